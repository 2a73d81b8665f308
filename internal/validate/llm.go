package validate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/graphaudit/internal/llm"
	"github.com/ppiankov/graphaudit/internal/model"
)

const llmSystemPrompt = "You are a fact-checking assistant that validates entity descriptions against source documents."

// LLMValidator audits entities with a single remote completion per entity
// and a fixed three-field structured reply.
type LLMValidator struct {
	provider llm.Provider
	corpus   Corpus
	cfg      model.ValidationConfig
}

// NewLLMValidator creates an LLM-backed validator. The provider must already
// be constructed; a missing credential fails at provider construction, before
// any batch work begins.
func NewLLMValidator(provider llm.Provider, corpus Corpus, cfg model.ValidationConfig) *LLMValidator {
	return &LLMValidator{
		provider: provider,
		corpus:   corpus,
		cfg:      cfg,
	}
}

// Name returns the method tag recorded on results
func (v *LLMValidator) Name() string {
	return model.MethodLLM
}

// ValidateEntity audits one entity against its source fragments
func (v *LLMValidator) ValidateEntity(ctx context.Context, entity *model.EntityRecord) (*model.ValidationResult, error) {
	started := time.Now()

	sourceTexts := v.corpus.SourceTexts(entity)
	if len(sourceTexts) == 0 {
		return failOpen(entity, model.MethodLLM, started, noSourceIssue), nil
	}

	prompt := buildValidationPrompt(entity, sourceTexts, v.cfg.MaxSourceTexts)

	var confidence float64
	var isHallucinated bool
	var issues []string

	reply, err := v.provider.Complete(ctx, llm.CompletionRequest{
		System:    llmSystemPrompt,
		Prompt:    prompt,
		MaxTokens: 500,
	})
	if err != nil {
		// Transport failure, not content fabrication: fail open and keep
		// the diagnostic on the result.
		confidence = 0.0
		isHallucinated = false
		issues = []string{fmt.Sprintf("API error: %v", err)}
	} else {
		confidence, isHallucinated, issues = parseValidationReply(reply)
	}

	return &model.ValidationResult{
		EntityID:       entity.ID,
		EntityName:     entity.Title,
		EntityType:     entity.Type,
		Description:    entity.Description,
		Confidence:     confidence,
		IsHallucinated: isHallucinated,
		Method:         model.MethodLLM,
		Issues:         issues,
		ValidationTime: time.Since(started).Seconds(),
	}, nil
}

func buildValidationPrompt(entity *model.EntityRecord, sourceTexts []string, maxTexts int) string {
	context := joinContext(sourceTexts, maxTexts)

	return fmt.Sprintf(`You are validating whether an entity description is supported by the source documents.

ENTITY INFORMATION:
- Name: %s
- Type: %s
- Description: %s

SOURCE DOCUMENTS:
%s

TASK:
Carefully check if the entity description is factually supported by the source documents. Look for:
1. Does the entity name appear in the source documents?
2. Is the entity type correct based on context?
3. Are the claims in the description supported by the source text?
4. Is there any information in the description that contradicts or isn't mentioned in the sources?

Respond in this exact format:
SUPPORTED: [YES/NO]
CONFIDENCE: [0.0-1.0, where 1.0 means definitely hallucinated]
ISSUES: [List specific problems, or "None" if description is accurate]

Be specific about any unsupported claims.`, entity.Title, entity.Type, entity.Description, context)
}

// parseValidationReply extracts the three labeled fields from the model
// reply and reconciles the confidence value.
//
// The prompt asks for confidence where 1.0 = definitely hallucinated, but
// models sometimes report confidence in their own verdict instead. The
// SUPPORTED field is the primary indicator: when the two disagree across
// the 0.5 midpoint, the number is treated as miscalibrated and clamped
// (supported -> 0.1, unsupported -> 0.8). The boolean decision itself is
// always the negation of SUPPORTED and is never overridden by the number.
func parseValidationReply(reply string) (confidence float64, isHallucinated bool, issues []string) {
	supported := true
	rawConfidence := 0.0

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUPPORTED:"):
			supported = strings.Contains(strings.ToUpper(line), "YES")
		case strings.HasPrefix(line, "CONFIDENCE:"):
			rawConfidence = parseConfidence(line)
		case strings.HasPrefix(line, "ISSUES:"):
			text := strings.TrimSpace(strings.TrimPrefix(line, "ISSUES:"))
			if lower := strings.ToLower(text); lower != "none" && lower != "none." && text != "" {
				issues = append(issues, text)
			}
		}
	}

	if supported {
		if rawConfidence > 0.5 {
			confidence = 0.1
		} else {
			confidence = rawConfidence
		}
	} else {
		if rawConfidence < 0.5 {
			confidence = 0.8
		} else {
			confidence = rawConfidence
		}
	}

	return confidence, !supported, issues
}

// parseConfidence reads the float after "CONFIDENCE:", tolerating trailing
// commentary like "0.8 (high)".
func parseConfidence(line string) float64 {
	value := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0.0
	}
	f, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0.0
	}
	return f
}
