package validate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/graphaudit/internal/llm"
	"github.com/ppiankov/graphaudit/internal/model"
)

// HybridValidator runs a cheap lexical-overlap heuristic first and escalates
// to the LLM only for entities inside the uncertain coverage band. This is
// the cost/latency design point: the fast path settles most entities without
// a network call.
//
// The escalation is composition, not inheritance: the validator holds an
// optional provider and overwrites the method tag and timing on whatever the
// escalation returns.
type HybridValidator struct {
	provider llm.Provider // nil when no LLM capability is configured
	corpus   Corpus
	cfg      model.ValidationConfig
}

// NewHybridValidator creates a hybrid validator. provider may be nil, in
// which case uncertain entities get a conservative midpoint verdict instead
// of an escalation.
func NewHybridValidator(provider llm.Provider, corpus Corpus, cfg model.ValidationConfig) *HybridValidator {
	return &HybridValidator{
		provider: provider,
		corpus:   corpus,
		cfg:      cfg,
	}
}

// Name returns the method tag recorded on results
func (v *HybridValidator) Name() string {
	return model.MethodHybrid
}

// ValidateEntity audits one entity against its source fragments
func (v *HybridValidator) ValidateEntity(ctx context.Context, entity *model.EntityRecord) (*model.ValidationResult, error) {
	started := time.Now()

	sourceTexts := v.corpus.SourceTexts(entity)
	if len(sourceTexts) == 0 {
		return failOpen(entity, model.MethodHybrid, started, noSourceIssue), nil
	}

	coverage, nameFound := TextMatch(entity, sourceTexts)

	result := v.decide(ctx, entity, sourceTexts, coverage, nameFound)
	result.ValidationTime = time.Since(started).Seconds()
	return result, nil
}

// TextMatch computes the fast-path signals: the fraction of the
// description's key terms found verbatim in the concatenated sources, and
// whether the entity name appears at all (both case-insensitive).
func TextMatch(entity *model.EntityRecord, sourceTexts []string) (coverage float64, nameFound bool) {
	combined := strings.ToLower(strings.Join(sourceTexts, " "))

	terms := keyTerms(entity.Description)
	if len(terms) > 0 {
		found := 0
		for _, term := range terms {
			if strings.Contains(combined, term) {
				found++
			}
		}
		coverage = float64(found) / float64(len(terms))
	}

	nameFound = strings.Contains(combined, strings.ToLower(entity.Title))
	return coverage, nameFound
}

// decide applies the decision table in order; first match wins.
func (v *HybridValidator) decide(ctx context.Context, entity *model.EntityRecord, sourceTexts []string, coverage float64, nameFound bool) *model.ValidationResult {
	base := model.ValidationResult{
		EntityID:    entity.ID,
		EntityName:  entity.Title,
		EntityType:  entity.Type,
		Description: entity.Description,
	}

	// High coverage with the name present: clearly supported.
	if coverage > v.cfg.CoverageHigh && nameFound {
		base.Confidence = 0.1
		base.IsHallucinated = false
		base.Method = model.MethodHybridText
		return &base
	}

	// Low coverage or a missing name: clearly unsupported.
	if coverage < v.cfg.CoverageLow || !nameFound {
		var issues []string
		if !nameFound {
			issues = append(issues, fmt.Sprintf("Entity name '%s' not found in source texts", entity.Title))
		}
		if coverage < v.cfg.CoverageLow {
			issues = append(issues, fmt.Sprintf("Low term coverage (%.1f%%)", coverage*100))
		}
		base.Confidence = 0.8
		base.IsHallucinated = true
		base.Method = model.MethodHybridText
		base.Issues = issues
		return &base
	}

	// Uncertain band: escalate when the LLM capability is configured.
	if v.provider != nil {
		result := v.spotCheck(ctx, entity, sourceTexts)
		result.Method = model.MethodHybridLLM
		return result
	}

	// No escalation available: conservative midpoint, flagged only when
	// coverage sits in the lower half of the band.
	base.Confidence = 0.5
	base.IsHallucinated = coverage < 0.5
	base.Method = model.MethodHybridText
	base.Issues = []string{fmt.Sprintf("Uncertain (coverage: %.1f%%)", coverage*100)}
	return &base
}

// spotCheck runs the shorter escalation prompt. Any infrastructure failure
// returns the midpoint verdict, never a hallucination flag.
func (v *HybridValidator) spotCheck(ctx context.Context, entity *model.EntityRecord, sourceTexts []string) *model.ValidationResult {
	context := joinContext(sourceTexts, v.cfg.MaxSourceTexts)

	prompt := fmt.Sprintf(`Quickly validate if this entity description is accurate:

ENTITY: %s (%s)
DESCRIPTION: %s

SOURCE TEXT:
%s

Is the description supported? Reply with ONLY:
VERDICT: [ACCURATE/HALLUCINATED]
CONFIDENCE: [0.0-1.0]
REASON: [one sentence]`, entity.Title, entity.Type, entity.Description, context)

	base := model.ValidationResult{
		EntityID:    entity.ID,
		EntityName:  entity.Title,
		EntityType:  entity.Type,
		Description: entity.Description,
	}

	reply, err := v.provider.Complete(ctx, llm.CompletionRequest{
		System:    "You are a fast fact-checker.",
		Prompt:    prompt,
		MaxTokens: 150,
	})
	if err != nil {
		base.Confidence = 0.5
		base.IsHallucinated = false
		base.Issues = []string{fmt.Sprintf("API error: %v", err)}
		return &base
	}

	isHallucinated := strings.Contains(strings.ToUpper(reply), "HALLUCINATED")
	if isHallucinated {
		base.Confidence = 0.7
	} else {
		base.Confidence = 0.3
	}
	base.IsHallucinated = isHallucinated

	for _, line := range strings.Split(reply, "\n") {
		if strings.HasPrefix(line, "REASON:") {
			base.Issues = append(base.Issues, strings.TrimSpace(strings.TrimPrefix(line, "REASON:")))
		}
	}

	return &base
}
