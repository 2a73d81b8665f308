package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/graphaudit/internal/model"
	"github.com/ppiankov/graphaudit/internal/nli"
)

// NLIValidator decomposes the description into sentence-level claims and
// tests each against the source fragments with a local entailment model.
type NLIValidator struct {
	entail nli.EntailmentFunc
	corpus Corpus
	cfg    model.ValidationConfig
}

// NewNLIValidator creates a validator backed by the given entailment
// function (usually nli.NewLocalEntailment, injectable for tests).
func NewNLIValidator(entail nli.EntailmentFunc, corpus Corpus, cfg model.ValidationConfig) *NLIValidator {
	return &NLIValidator{
		entail: entail,
		corpus: corpus,
		cfg:    cfg,
	}
}

// Name returns the method tag recorded on results
func (v *NLIValidator) Name() string {
	return model.MethodNLI
}

// ValidateEntity audits one entity against its source fragments
func (v *NLIValidator) ValidateEntity(ctx context.Context, entity *model.EntityRecord) (*model.ValidationResult, error) {
	started := time.Now()

	sourceTexts := v.corpus.SourceTexts(entity)
	if len(sourceTexts) == 0 {
		return failOpen(entity, model.MethodNLI, started, noSourceIssue), nil
	}
	if len(sourceTexts) > v.cfg.MaxSourceTexts {
		sourceTexts = sourceTexts[:v.cfg.MaxSourceTexts]
	}

	sentences := splitSentences(entity.Description, v.cfg.MinSentenceLen)

	// A claim counts as supported if ANY source entails it, so each
	// sentence keeps its best entailment across the fragments.
	var unsupportedScores []float64
	for _, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		maxEntailment := 0.0
		for _, sourceText := range sourceTexts {
			premise := truncate(sourceText, v.cfg.MaxSourceChars)

			scores, err := v.entail(premise, sentence)
			if err != nil {
				return nil, fmt.Errorf("entailment inference: %w", err)
			}
			if scores.Entailment > maxEntailment {
				maxEntailment = scores.Entailment
			}
		}

		unsupportedScores = append(unsupportedScores, 1.0-maxEntailment)
	}

	confidence := 0.0
	if len(unsupportedScores) > 0 {
		sum := 0.0
		for _, s := range unsupportedScores {
			sum += s
		}
		confidence = sum / float64(len(unsupportedScores))
	}

	isHallucinated := confidence > v.cfg.NLIThreshold
	var issues []string
	if isHallucinated {
		issues = append(issues, fmt.Sprintf("Description not well-supported by source texts (avg entailment: %.2f)", 1.0-confidence))
	}

	return &model.ValidationResult{
		EntityID:       entity.ID,
		EntityName:     entity.Title,
		EntityType:     entity.Type,
		Description:    entity.Description,
		Confidence:     confidence,
		IsHallucinated: isHallucinated,
		Method:         model.MethodNLI,
		Issues:         issues,
		ValidationTime: time.Since(started).Seconds(),
	}, nil
}
