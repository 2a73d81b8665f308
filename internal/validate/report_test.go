package validate

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/graphaudit/internal/model"
)

func TestSummarize(t *testing.T) {
	results := []model.ValidationResult{
		{EntityID: "a", EntityName: "A", Confidence: 0.2, ValidationTime: 1.0},
		{EntityID: "b", EntityName: "B", Confidence: 0.8, IsHallucinated: true, ValidationTime: 2.0},
		{EntityID: "c", EntityName: "C", Confidence: 0.9, IsHallucinated: true, ValidationTime: 3.0},
	}

	summary := NewReportGenerator().Summarize(results)

	if summary.Total != 3 || summary.Hallucinated != 2 {
		t.Errorf("totals = (%d, %d), want (3, 2)", summary.Total, summary.Hallucinated)
	}
	if math.Abs(summary.HallucinatedPct-66.666) > 0.01 {
		t.Errorf("pct = %v, want 66.7", summary.HallucinatedPct)
	}
	if math.Abs(summary.MeanConfidence-0.6333) > 0.001 {
		t.Errorf("mean confidence = %v, want 0.633", summary.MeanConfidence)
	}
	if summary.TotalTimeSeconds != 6.0 || summary.MeanTimePerEntity != 2.0 {
		t.Errorf("time = (%v, %v), want (6.0, 2.0)", summary.TotalTimeSeconds, summary.MeanTimePerEntity)
	}

	if len(summary.TopHallucinated) != 2 {
		t.Fatalf("top list has %d entries, want 2", len(summary.TopHallucinated))
	}
	if summary.TopHallucinated[0].EntityID != "c" || summary.TopHallucinated[1].EntityID != "b" {
		t.Errorf("top list not sorted by confidence: %v, %v",
			summary.TopHallucinated[0].EntityID, summary.TopHallucinated[1].EntityID)
	}
}

func TestSummarizeTopTenCap(t *testing.T) {
	var results []model.ValidationResult
	for i := 0; i < 15; i++ {
		results = append(results, model.ValidationResult{
			EntityID:       string(rune('a' + i)),
			Confidence:     float64(i) / 15.0,
			IsHallucinated: true,
		})
	}

	summary := NewReportGenerator().Summarize(results)
	if len(summary.TopHallucinated) != 10 {
		t.Fatalf("top list has %d entries, want 10", len(summary.TopHallucinated))
	}
	for i := 1; i < len(summary.TopHallucinated); i++ {
		if summary.TopHallucinated[i].Confidence > summary.TopHallucinated[i-1].Confidence {
			t.Fatal("top list not in descending confidence order")
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := NewReportGenerator().Summarize(nil)
	if summary.Total != 0 || summary.Hallucinated != 0 || summary.MeanConfidence != 0 {
		t.Errorf("empty summary not zeroed: %+v", summary)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	results := []model.ValidationResult{
		{
			EntityID:       "e1",
			EntityName:     "ACME CORP",
			EntityType:     "ORGANIZATION",
			Description:    "Makes anvils.",
			Confidence:     0.8,
			IsHallucinated: true,
			Method:         model.MethodHybridText,
			Issues:         []string{"Entity name 'ACME CORP' not found in source texts", "Low term coverage (10.0%)"},
			ValidationTime: 0.5,
		},
	}

	if err := NewReportGenerator().WriteCSV(results, path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "entity_id") || !strings.Contains(content, "issues") {
		t.Errorf("header missing expected columns:\n%s", content)
	}
	if !strings.Contains(content, "not found in source texts; Low term coverage (10.0%)") {
		t.Errorf("issues not joined with semicolons:\n%s", content)
	}
	if !strings.Contains(content, "hybrid_text") {
		t.Errorf("method column missing:\n%s", content)
	}
}

func TestRenderSummary(t *testing.T) {
	summary := model.ReportSummary{
		Total:           4,
		Hallucinated:    1,
		HallucinatedPct: 25.0,
		MeanConfidence:  0.4,
		TopHallucinated: []model.ValidationResult{
			{EntityName: "GHOST CO", EntityType: "ORGANIZATION", Confidence: 0.8,
				Issues: []string{"Low term coverage (5.0%)"}},
		},
	}

	var buf bytes.Buffer
	NewReportGenerator().Render(&buf, summary, "report.csv")
	out := buf.String()

	for _, want := range []string{
		"Total entities validated: 4",
		"Hallucinated entities: 1 (25.0%)",
		"GHOST CO",
		"report.csv",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}
