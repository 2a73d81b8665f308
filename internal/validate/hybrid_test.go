package validate

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/graphaudit/internal/model"
)

func TestTextMatch(t *testing.T) {
	entity := testEntity()

	tests := []struct {
		name          string
		sources       []string
		wantCoverage  float64
		wantNameFound bool
	}{
		{
			name:          "full overlap",
			sources:       []string{"ACME Corp is a manufacturer of industrial anvils based in Arizona."},
			wantCoverage:  1.0,
			wantNameFound: true,
		},
		{
			name:          "no overlap",
			sources:       []string{"The quick brown fox."},
			wantCoverage:  0.0,
			wantNameFound: false,
		},
		{
			// keyTerms yields acme, corp, manufacturer, industrial,
			// anvils, based, arizona; this source matches three.
			name:          "partial overlap",
			sources:       []string{"ACME CORP makes anvils."},
			wantCoverage:  3.0 / 7.0,
			wantNameFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coverage, nameFound := TextMatch(entity, tt.sources)
			if math.Abs(coverage-tt.wantCoverage) > 1e-9 {
				t.Errorf("coverage = %v, want %v", coverage, tt.wantCoverage)
			}
			if nameFound != tt.wantNameFound {
				t.Errorf("nameFound = %v, want %v", nameFound, tt.wantNameFound)
			}
		})
	}
}

func TestHybridHighCoverage(t *testing.T) {
	provider := &stubProvider{reply: "VERDICT: HALLUCINATED"}
	corpus := stubCorpus{"e1": {"ACME Corp is a manufacturer of industrial anvils based in Arizona."}}
	v := NewHybridValidator(provider, corpus, testValidationConfig())

	result, err := v.ValidateEntity(context.Background(), testEntity())
	if err != nil {
		t.Fatalf("ValidateEntity: %v", err)
	}
	if result.Confidence != 0.1 || result.IsHallucinated {
		t.Errorf("verdict = (%v, %v), want (0.1, false)", result.Confidence, result.IsHallucinated)
	}
	if result.Method != model.MethodHybridText {
		t.Errorf("method = %q, want %q", result.Method, model.MethodHybridText)
	}
	if provider.calls != 0 {
		t.Error("LLM escalation on the clear-support path")
	}
}

func TestHybridLowCoverage(t *testing.T) {
	corpus := stubCorpus{"e1": {"Completely unrelated fragment about fox behavior."}}
	v := NewHybridValidator(nil, corpus, testValidationConfig())

	result, err := v.ValidateEntity(context.Background(), testEntity())
	if err != nil {
		t.Fatalf("ValidateEntity: %v", err)
	}
	if result.Confidence != 0.8 || !result.IsHallucinated {
		t.Errorf("verdict = (%v, %v), want (0.8, true)", result.Confidence, result.IsHallucinated)
	}
	if len(result.Issues) != 2 {
		t.Errorf("issues = %v, want name and coverage diagnostics", result.Issues)
	}
	if !strings.Contains(result.Issues[0], "not found in source texts") {
		t.Errorf("issue[0] = %q, want missing-name diagnostic", result.Issues[0])
	}
}

func TestHybridEscalation(t *testing.T) {
	// Coverage 3/7 with the name present lands in the uncertain band.
	corpus := stubCorpus{"e1": {"ACME CORP makes anvils."}}

	t.Run("hallucinated verdict", func(t *testing.T) {
		provider := &stubProvider{reply: "VERDICT: HALLUCINATED\nCONFIDENCE: 0.9\nREASON: Arizona claim not in source"}
		v := NewHybridValidator(provider, corpus, testValidationConfig())

		result, err := v.ValidateEntity(context.Background(), testEntity())
		if err != nil {
			t.Fatalf("ValidateEntity: %v", err)
		}
		if provider.calls != 1 {
			t.Fatalf("provider called %d times, want 1", provider.calls)
		}
		if result.Confidence != 0.7 || !result.IsHallucinated {
			t.Errorf("verdict = (%v, %v), want (0.7, true)", result.Confidence, result.IsHallucinated)
		}
		if result.Method != model.MethodHybridLLM {
			t.Errorf("method = %q, want %q", result.Method, model.MethodHybridLLM)
		}
		if len(result.Issues) != 1 || !strings.Contains(result.Issues[0], "Arizona") {
			t.Errorf("issues = %v, want the REASON line", result.Issues)
		}
	})

	t.Run("accurate verdict", func(t *testing.T) {
		provider := &stubProvider{reply: "VERDICT: ACCURATE\nCONFIDENCE: 0.9\nREASON: Supported"}
		v := NewHybridValidator(provider, corpus, testValidationConfig())

		result, err := v.ValidateEntity(context.Background(), testEntity())
		if err != nil {
			t.Fatalf("ValidateEntity: %v", err)
		}
		if result.Confidence != 0.3 || result.IsHallucinated {
			t.Errorf("verdict = (%v, %v), want (0.3, false)", result.Confidence, result.IsHallucinated)
		}
	})

	t.Run("API error stays neutral", func(t *testing.T) {
		provider := &stubProvider{err: context.DeadlineExceeded}
		v := NewHybridValidator(provider, corpus, testValidationConfig())

		result, err := v.ValidateEntity(context.Background(), testEntity())
		if err != nil {
			t.Fatalf("ValidateEntity: %v", err)
		}
		if result.Confidence != 0.5 || result.IsHallucinated {
			t.Errorf("verdict = (%v, %v), want (0.5, false)", result.Confidence, result.IsHallucinated)
		}
	})
}

func TestHybridUncertainWithoutProvider(t *testing.T) {
	corpus := stubCorpus{"e1": {"ACME CORP makes anvils."}}
	v := NewHybridValidator(nil, corpus, testValidationConfig())

	result, err := v.ValidateEntity(context.Background(), testEntity())
	if err != nil {
		t.Fatalf("ValidateEntity: %v", err)
	}
	if result.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", result.Confidence)
	}
	// Coverage 3/7 sits in the lower half of the band, so the midpoint
	// verdict leans flagged.
	if !result.IsHallucinated {
		t.Error("uncertain low-band entity not flagged without escalation")
	}
	if result.Method != model.MethodHybridText {
		t.Errorf("method = %q, want %q", result.Method, model.MethodHybridText)
	}
}

func TestHybridNoSources(t *testing.T) {
	v := NewHybridValidator(nil, stubCorpus{}, testValidationConfig())

	result, err := v.ValidateEntity(context.Background(), testEntity())
	if err != nil {
		t.Fatalf("ValidateEntity: %v", err)
	}
	if result.IsHallucinated || result.Confidence != 0.0 {
		t.Error("entity without sources must fail open")
	}
}
