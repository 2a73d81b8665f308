package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/graphaudit/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider string means LLM validation is disabled (nil, nil).
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "groq":
		// Groq exposes an OpenAI-compatible API
		if config.BaseURL == "" {
			config.BaseURL = GroqBaseURL
		}
		return NewOpenAIProvider("groq", config)

	case "openai":
		return NewOpenAIProvider("openai", config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: groq, openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:          modelConfig.Provider,
		Model:             modelConfig.Model,
		APIKey:            modelConfig.APIKey,
		BaseURL:           modelConfig.BaseURL,
		Timeout:           modelConfig.Timeout,
		MaxTokens:         modelConfig.MaxTokens,
		RequestsPerSecond: modelConfig.RequestsPerSecond,
		BurstSize:         modelConfig.BurstSize,
	}
}
