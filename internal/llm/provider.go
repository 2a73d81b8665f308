// Package llm abstracts the remote completion capability used by the
// validation scorers. One call per validation (or per escalation), always
// deterministic (temperature 0), with a bounded response length.
package llm

import "context"

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a single prompt and returns the raw reply text
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains one validation prompt.
type CompletionRequest struct {
	// System is the system instruction (role framing for the fact check)
	System string

	// Prompt is the user message containing entity and source context
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "groq", "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for remote providers
	APIKey string

	// BaseURL for custom endpoints (Groq, Ollama, self-hosted gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerSecond throttles outgoing calls; 0 disables throttling.
	// Remote rate limits, not local compute, bound large validation runs.
	RequestsPerSecond float64

	// BurstSize for the rate limiter
	BurstSize int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "",
		Model:             "",
		Timeout:           30,
		MaxTokens:         500,
		RequestsPerSecond: 2,
		BurstSize:         2,
	}
}
