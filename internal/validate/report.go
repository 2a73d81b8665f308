package validate

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jszwec/csvutil"
	"github.com/ppiankov/graphaudit/internal/model"
)

// reportRow flattens a ValidationResult for tabular output: the issues list
// becomes one delimited text field.
type reportRow struct {
	model.ValidationResult
	IssuesText string `csv:"issues"`
}

// ReportGenerator aggregates a result collection and writes the CSV report.
type ReportGenerator struct{}

// NewReportGenerator creates a report generator
func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// Summarize computes the aggregate statistics and the top-10 flagged
// entities (highest confidence first, ties in original order).
func (g *ReportGenerator) Summarize(results []model.ValidationResult) model.ReportSummary {
	summary := model.ReportSummary{Total: len(results)}
	if len(results) == 0 {
		return summary
	}

	var confidenceSum, timeSum float64
	var flagged []model.ValidationResult
	for _, r := range results {
		confidenceSum += r.Confidence
		timeSum += r.ValidationTime
		if r.IsHallucinated {
			flagged = append(flagged, r)
		}
	}

	summary.Hallucinated = len(flagged)
	summary.HallucinatedPct = 100 * float64(len(flagged)) / float64(len(results))
	summary.MeanConfidence = confidenceSum / float64(len(results))
	summary.TotalTimeSeconds = timeSum
	summary.MeanTimePerEntity = timeSum / float64(len(results))

	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Confidence > flagged[j].Confidence
	})
	if len(flagged) > 10 {
		flagged = flagged[:10]
	}
	summary.TopHallucinated = flagged

	return summary
}

// WriteCSV serializes the full result collection to a tabular report file.
func (g *ReportGenerator) WriteCSV(results []model.ValidationResult, path string) error {
	rows := make([]reportRow, len(results))
	for i, r := range results {
		rows[i] = reportRow{
			ValidationResult: r,
			IssuesText:       strings.Join(r.Issues, "; "),
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Render prints the human-readable summary.
func (g *ReportGenerator) Render(w io.Writer, summary model.ReportSummary, reportPath string) {
	bold := color.New(color.Bold)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	_, _ = bold.Fprintln(w, "  VALIDATION REPORT")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "Total entities validated: %d\n", summary.Total)
	if summary.Total == 0 {
		fmt.Fprintln(w, "No results to report")
		return
	}
	fmt.Fprintf(w, "Hallucinated entities: %d (%.1f%%)\n", summary.Hallucinated, summary.HallucinatedPct)
	fmt.Fprintf(w, "Average confidence: %.3f\n", summary.MeanConfidence)
	fmt.Fprintf(w, "Total validation time: %.1fs\n", summary.TotalTimeSeconds)
	fmt.Fprintf(w, "Average time per entity: %.2fs\n", summary.MeanTimePerEntity)
	if reportPath != "" {
		fmt.Fprintf(w, "\nReport saved to: %s\n", reportPath)
	}
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")

	if len(summary.TopHallucinated) == 0 {
		return
	}

	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Top 10 Most Confident Hallucinations:")
	for i, r := range summary.TopHallucinated {
		fmt.Fprintf(w, "%d. %s (%s) - Confidence: %.3f\n", i+1, r.EntityName, r.EntityType, r.Confidence)
		if len(r.Issues) > 0 {
			fmt.Fprintf(w, "   Issues: %s\n", strings.Join(r.Issues, ", "))
		}
	}
}
