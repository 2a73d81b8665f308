// Package validate audits entity descriptions produced by the graph indexer
// against the source fragments they cite. Three interchangeable scorers
// implement the same contract: a remote LLM spot check, local NLI inference,
// and a hybrid text-overlap heuristic with LLM escalation.
//
// All scorers fail open: when evidence or tooling is unavailable the entity
// is NOT flagged. Absence of evidence is never treated as evidence of
// fabrication, and a tool failure must never be promoted to "confirmed
// hallucination".
package validate

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/ppiankov/graphaudit/internal/model"
)

// Validator scores a single entity description.
type Validator interface {
	// Name returns the method tag recorded on results
	Name() string

	// ValidateEntity audits one entity against its source fragments
	ValidateEntity(ctx context.Context, entity *model.EntityRecord) (*model.ValidationResult, error)
}

// Corpus resolves entities to their source fragment texts.
type Corpus interface {
	SourceTexts(entity *model.EntityRecord) []string
}

const noSourceIssue = "No source texts available"

// failOpen builds the not-flagged result used whenever evidence or tooling
// is missing.
func failOpen(entity *model.EntityRecord, method string, started time.Time, issues ...string) *model.ValidationResult {
	return &model.ValidationResult{
		EntityID:       entity.ID,
		EntityName:     entity.Title,
		EntityType:     entity.Type,
		Description:    entity.Description,
		Confidence:     0.0,
		IsHallucinated: false,
		Method:         method,
		Issues:         issues,
		ValidationTime: time.Since(started).Seconds(),
	}
}

// joinContext concatenates at most maxTexts fragments into one prompt
// context block. The cap bounds request size, not accuracy: on typical index
// output the first fragments carry the extraction evidence.
func joinContext(sourceTexts []string, maxTexts int) string {
	if len(sourceTexts) > maxTexts {
		sourceTexts = sourceTexts[:maxTexts]
	}
	return strings.Join(sourceTexts, "\n\n---\n\n")
}

// splitSentences breaks a description into claim-sized pieces on
// sentence-terminating punctuation. Pieces shorter than minLen carry no
// checkable claim and are dropped.
func splitSentences(description string, minLen int) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		s = strings.TrimRight(s, ".!?")
		if len(s) >= minLen {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range description {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()

	return sentences
}

// keyTerms extracts the description's checkable vocabulary: alphabetic
// tokens longer than 3 characters with surrounding punctuation stripped.
func keyTerms(description string) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(description)) {
		word = strings.Trim(word, `.,;:!?()"'`)
		if len(word) > 3 && isAlpha(word) {
			terms = append(terms, word)
		}
	}
	return terms
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
