// Package pipeline orchestrates the document-to-graph flow: PDFs are
// extracted through the OCR service, cleaned, and handed to the external
// indexer. Each stage is logged into a run result that is persisted next to
// the output, so a failed overnight run can be diagnosed from the artifact
// alone.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/ppiankov/graphaudit/internal/indexer"
	"github.com/ppiankov/graphaudit/internal/model"
	"github.com/ppiankov/graphaudit/internal/textproc"
	"github.com/ppiankov/graphaudit/internal/worker"
)

// Extractor is the OCR capability the pipeline needs.
type Extractor interface {
	worker.Extractor
	IsAvailable(ctx context.Context) bool
}

// Orchestrator runs the staged document pipeline.
type Orchestrator struct {
	cfg       *model.Config
	extractor Extractor
	runner    *indexer.Runner
	out       io.Writer

	// fastSettings optionally names a pre-tuned indexer settings file
	// installed during setup.
	fastSettings string
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(cfg *model.Config, extractor Extractor, runner *indexer.Runner) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		extractor:    extractor,
		runner:       runner,
		out:          os.Stderr,
		fastSettings: "settings_fast.yaml",
	}
}

// SetOutput redirects (or with nil, silences) stage output.
func (o *Orchestrator) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	o.out = w
}

// SetFastSettings overrides the pre-tuned settings file location; empty
// disables installation.
func (o *Orchestrator) SetFastSettings(path string) {
	o.fastSettings = path
}

// Run executes the full pipeline. Per-file extraction failures are recorded
// and skipped; zero successfully extracted documents aborts the run. The
// returned RunResult is filled in even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context) (*model.RunResult, error) {
	result := model.NewRunResult()

	err := o.run(ctx, result)
	result.Finish(err)

	if err != nil {
		o.banner(color.FgRed, "PIPELINE FAILED")
		fmt.Fprintf(o.out, "Error: %v\nDuration before failure: %s\n", err, result.Duration)
		return result, err
	}

	o.banner(color.FgGreen, "PIPELINE COMPLETED")
	fmt.Fprintf(o.out, "Total time: %s\n", result.Duration)
	fmt.Fprintf(o.out, "Processed: %d files\n", len(result.ProcessedFiles))
	fmt.Fprintf(o.out, "Output: %s\n", o.runner.Dir())
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, result *model.RunResult) error {
	// Stage 1: directories.
	o.stage(result, "Directory Setup", model.StageStarting, "")
	if err := os.MkdirAll(o.cfg.Paths.ProcessedTextDir, 0755); err != nil {
		o.stage(result, "Directory Setup", model.StageFailed, err.Error())
		return fmt.Errorf("create processed text dir: %w", err)
	}
	o.stage(result, "Directory Setup", model.StageCompleted, "created "+o.cfg.Paths.ProcessedTextDir)

	// Stage 2: OCR service probe.
	o.stage(result, "OCR Service Connection", model.StageStarting, o.cfg.OCR.StirlingURL)
	if !o.extractor.IsAvailable(ctx) {
		detail := "cannot reach " + o.cfg.OCR.StirlingURL
		o.stage(result, "OCR Service Connection", model.StageFailed, detail)
		return fmt.Errorf("stirling pdf unreachable at %s", o.cfg.OCR.StirlingURL)
	}
	o.stage(result, "OCR Service Connection", model.StageCompleted, "service accessible")

	// Stage 3: extraction and cleanup.
	pdfs, err := worker.ListPDFs(o.cfg.Paths.InputPDFDir)
	if err != nil {
		return fmt.Errorf("list input pdfs: %w", err)
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files in %s", o.cfg.Paths.InputPDFDir)
	}

	o.stage(result, "PDF Text Extraction", model.StageStarting, fmt.Sprintf("%d file(s)", len(pdfs)))
	processed, err := o.extractAll(ctx, pdfs, result)
	if err != nil {
		o.stage(result, "PDF Text Extraction", model.StageFailed, err.Error())
		return err
	}
	totalChars := 0
	for _, stats := range result.ProcessedFiles {
		totalChars += stats.CleanedChars
	}
	o.stage(result, "PDF Text Extraction", model.StageCompleted,
		fmt.Sprintf("%d file(s), %d characters", len(processed), totalChars))

	// Stage 4: indexer project setup.
	o.stage(result, "Indexer Setup", model.StageStarting, "")
	if err := o.runner.Setup(o.fastSettings); err != nil {
		o.stage(result, "Indexer Setup", model.StageFailed, err.Error())
		return fmt.Errorf("indexer setup: %w", err)
	}
	if err := o.runner.CopyInputs(processed); err != nil {
		o.stage(result, "Indexer Setup", model.StageFailed, err.Error())
		return fmt.Errorf("copy indexer inputs: %w", err)
	}
	o.stage(result, "Indexer Setup", model.StageCompleted,
		fmt.Sprintf("%d file(s) copied to %s", len(processed), o.runner.InputDir()))

	// Stage 5: init only on a fresh project.
	if o.runner.NeedsInit() {
		o.stage(result, "Indexer Init", model.StageStarting, "")
		if err := o.runner.Init(ctx); err != nil {
			o.stage(result, "Indexer Init", model.StageFailed, err.Error())
			return err
		}
		o.stage(result, "Indexer Init", model.StageCompleted, "")
	}

	// Stage 6: indexing.
	o.stage(result, "Indexing", model.StageStarting, "API-bound, may take a while")
	if err := o.runner.Index(ctx); err != nil {
		o.stage(result, "Indexing", model.StageFailed, err.Error())
		return err
	}
	o.stage(result, "Indexing", model.StageCompleted,
		fmt.Sprintf("%d artifacts under %s", o.runner.ArtifactCount(), o.runner.Dir()))

	return nil
}

// extractAll fans PDF extraction out over the worker pool, then cleans and
// writes each text sequentially. Returns the processed text file paths.
func (o *Orchestrator) extractAll(ctx context.Context, pdfs []string, result *model.RunResult) ([]string, error) {
	batch := worker.NewExtractBatch(o.extractor, o.cfg.Concurrency.ExtractWorkers)
	extracted := batch.ProcessFiles(ctx, pdfs)
	sort.Slice(extracted, func(i, j int) bool { return extracted[i].Path < extracted[j].Path })

	var processed []string
	for _, item := range extracted {
		name := filepath.Base(item.Path)
		if item.Error != nil {
			msg := fmt.Sprintf("failed to process %s: %v", name, item.Error)
			result.Errors = append(result.Errors, msg)
			color.New(color.FgRed).Fprintf(o.out, "  %s\n", msg)
			continue
		}

		text := item.Text
		if o.cfg.OCR.CleanText {
			text = textproc.Clean(text)
		}

		if len(text) < 100 {
			o.stage(result, "Extraction Validation", model.StageWarning,
				fmt.Sprintf("%s: only %d characters extracted", name, len(text)))
		}

		outPath := processedPath(o.cfg.Paths.ProcessedTextDir, item.Path)
		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			msg := fmt.Sprintf("failed to write %s: %v", outPath, err)
			result.Errors = append(result.Errors, msg)
			continue
		}

		info, _ := os.Stat(item.Path)
		var originalSize int64
		if info != nil {
			originalSize = info.Size()
		}
		result.ProcessedFiles = append(result.ProcessedFiles, model.FileStats{
			File:           item.Path,
			OriginalSize:   originalSize,
			ExtractedChars: len(item.Text),
			CleanedChars:   len(text),
			UsedOCR:        item.UsedOCR,
			FromCache:      item.FromCache,
		})
		mode := "text"
		if item.UsedOCR {
			mode = "ocr"
		}
		if item.FromCache {
			mode += ", cached"
		}
		fmt.Fprintf(o.out, "  %s: %d characters (%s)\n", name, len(text), mode)

		processed = append(processed, outPath)
	}

	if len(processed) == 0 {
		return nil, fmt.Errorf("no PDF files were successfully processed")
	}
	return processed, nil
}

func (o *Orchestrator) stage(result *model.RunResult, name, status, details string) {
	result.LogStage(name, status, details)

	statusColor := color.New(color.Reset)
	switch status {
	case model.StageCompleted:
		statusColor = color.New(color.FgGreen)
	case model.StageFailed:
		statusColor = color.New(color.FgRed)
	case model.StageWarning:
		statusColor = color.New(color.FgYellow)
	}
	statusColor.Fprintf(o.out, "%s: %s\n", name, strings.ToUpper(status))
	if details != "" {
		fmt.Fprintf(o.out, "   %s\n", details)
	}
}

func (o *Orchestrator) banner(attr color.Attribute, text string) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, line)
	color.New(attr).Fprintln(o.out, text)
	fmt.Fprintln(o.out, line)
}

// processedPath maps input/report.pdf to <dir>/report_processed.txt.
func processedPath(dir, pdfPath string) string {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(dir, stem+"_processed.txt")
}
