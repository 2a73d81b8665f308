package validate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/graphaudit/internal/llm"
	"github.com/ppiankov/graphaudit/internal/model"
)

// stubCorpus maps entity ids straight to source texts.
type stubCorpus map[string][]string

func (c stubCorpus) SourceTexts(entity *model.EntityRecord) []string {
	return c[entity.ID]
}

// stubProvider returns a canned reply (or error) for every completion.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	p.calls++
	return p.reply, p.err
}

func (p *stubProvider) IsAvailable(_ context.Context) bool { return p.err == nil }

func testValidationConfig() model.ValidationConfig {
	return model.ValidationConfig{
		NLIThreshold:   0.5,
		CoverageLow:    0.3,
		CoverageHigh:   0.7,
		MaxSourceTexts: 3,
		MaxSourceChars: 1000,
		MinSentenceLen: 10,
	}
}

func testEntity() *model.EntityRecord {
	return &model.EntityRecord{
		ID:          "e1",
		Title:       "ACME CORP",
		Type:        "ORGANIZATION",
		Description: "ACME Corp is a manufacturer of industrial anvils based in Arizona.",
	}
}

func TestParseValidationReply(t *testing.T) {
	tests := []struct {
		name           string
		reply          string
		wantConfidence float64
		wantFlagged    bool
		wantIssues     int
	}{
		{
			name:           "supported with consistent confidence",
			reply:          "SUPPORTED: YES\nCONFIDENCE: 0.1\nISSUES: None",
			wantConfidence: 0.1,
			wantFlagged:    false,
		},
		{
			name: "supported but confidence reported the wrong way round",
			// The model said YES then reported confidence in its own
			// verdict. The verdict wins and the number is clamped.
			reply:          "SUPPORTED: YES\nCONFIDENCE: 0.9\nISSUES: None",
			wantConfidence: 0.1,
			wantFlagged:    false,
		},
		{
			name:           "unsupported with low number clamps high",
			reply:          "SUPPORTED: NO\nCONFIDENCE: 0.2\nISSUES: Claim about Arizona is not in the sources",
			wantConfidence: 0.8,
			wantFlagged:    true,
			wantIssues:     1,
		},
		{
			name:           "unsupported with consistent confidence kept",
			reply:          "SUPPORTED: NO\nCONFIDENCE: 0.85\nISSUES: Fabricated founding date",
			wantConfidence: 0.85,
			wantFlagged:    true,
			wantIssues:     1,
		},
		{
			name:           "supported low confidence kept as-is",
			reply:          "SUPPORTED: YES\nCONFIDENCE: 0.3\nISSUES: None",
			wantConfidence: 0.3,
			wantFlagged:    false,
		},
		{
			name:           "confidence with trailing commentary",
			reply:          "SUPPORTED: NO\nCONFIDENCE: 0.8 (high)\nISSUES: Unsupported revenue claim",
			wantConfidence: 0.8,
			wantFlagged:    true,
			wantIssues:     1,
		},
		{
			name:           "malformed reply defaults to supported",
			reply:          "I cannot comply with that request.",
			wantConfidence: 0.0,
			wantFlagged:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confidence, flagged, issues := parseValidationReply(tt.reply)
			if confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", confidence, tt.wantConfidence)
			}
			if flagged != tt.wantFlagged {
				t.Errorf("isHallucinated = %v, want %v", flagged, tt.wantFlagged)
			}
			if len(issues) != tt.wantIssues {
				t.Errorf("issues = %v, want %d entries", issues, tt.wantIssues)
			}
		})
	}
}

func TestLLMValidatorNoSources(t *testing.T) {
	provider := &stubProvider{reply: "SUPPORTED: NO\nCONFIDENCE: 0.9\nISSUES: irrelevant"}
	v := NewLLMValidator(provider, stubCorpus{}, testValidationConfig())

	result, err := v.ValidateEntity(context.Background(), testEntity())
	if err != nil {
		t.Fatalf("ValidateEntity: %v", err)
	}
	if result.IsHallucinated {
		t.Error("entity without sources must not be flagged")
	}
	if result.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", result.Confidence)
	}
	if len(result.Issues) != 1 || result.Issues[0] != noSourceIssue {
		t.Errorf("issues = %v, want [%q]", result.Issues, noSourceIssue)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times without sources", provider.calls)
	}
}

func TestLLMValidatorAPIErrorFailsOpen(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	corpus := stubCorpus{"e1": {"ACME Corp makes anvils."}}
	v := NewLLMValidator(provider, corpus, testValidationConfig())

	result, err := v.ValidateEntity(context.Background(), testEntity())
	if err != nil {
		t.Fatalf("ValidateEntity: %v", err)
	}
	if result.IsHallucinated {
		t.Error("transport failure must not flag the entity")
	}
	if result.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", result.Confidence)
	}
	if len(result.Issues) != 1 || !strings.Contains(result.Issues[0], "API error") {
		t.Errorf("issues = %v, want one API error diagnostic", result.Issues)
	}
}

func TestLLMValidatorResultFields(t *testing.T) {
	provider := &stubProvider{reply: "SUPPORTED: NO\nCONFIDENCE: 0.9\nISSUES: Arizona claim not in sources"}
	corpus := stubCorpus{"e1": {"ACME Corp makes anvils."}}
	v := NewLLMValidator(provider, corpus, testValidationConfig())

	result, err := v.ValidateEntity(context.Background(), testEntity())
	if err != nil {
		t.Fatalf("ValidateEntity: %v", err)
	}
	if result.EntityID != "e1" || result.EntityName != "ACME CORP" {
		t.Errorf("identity fields not carried: %+v", result)
	}
	if result.Method != model.MethodLLM {
		t.Errorf("method = %q, want %q", result.Method, model.MethodLLM)
	}
	if !result.IsHallucinated || result.Confidence != 0.9 {
		t.Errorf("verdict = (%v, %v), want (true, 0.9)", result.IsHallucinated, result.Confidence)
	}
	if result.ValidationTime < 0 {
		t.Errorf("negative validation time %v", result.ValidationTime)
	}
}
