package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/graphaudit/internal/ocr"
)

// Extractor pulls text out of one PDF file.
type Extractor interface {
	ExtractFile(ctx context.Context, path string) (*ocr.Result, error)
}

// ExtractJob extracts one document.
type ExtractJob struct {
	Path      string
	Extractor Extractor
}

// Execute executes the extraction job
func (j *ExtractJob) Execute(ctx context.Context) Result {
	result, err := j.Extractor.ExtractFile(ctx, j.Path)
	if err != nil {
		return &ExtractResult{Path: j.Path, Error: err}
	}
	return &ExtractResult{
		Path:      j.Path,
		Text:      result.Text,
		UsedOCR:   result.UsedOCR,
		FromCache: result.FromCache,
	}
}

// ExtractResult is the outcome of one extraction job.
type ExtractResult struct {
	Path      string
	Text      string
	UsedOCR   bool
	FromCache bool
	Error     error
}

// GetError returns the error from the extraction result
func (r *ExtractResult) GetError() error {
	return r.Error
}

// ExtractBatch extracts a set of documents concurrently.
type ExtractBatch struct {
	extractor   Extractor
	concurrency int
}

// NewExtractBatch creates a batch extractor with the given concurrency.
func NewExtractBatch(extractor Extractor, concurrency int) *ExtractBatch {
	return &ExtractBatch{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessFiles extracts all paths through the pool. Results come back in
// completion order and carry their source path; callers that need the input
// order sort on Path.
func (b *ExtractBatch) ProcessFiles(ctx context.Context, paths []string) []*ExtractResult {
	if len(paths) == 0 {
		return []*ExtractResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		pool.Submit(&ExtractJob{Path: path, Extractor: b.extractor})
	}

	results := pool.Wait()

	extractResults := make([]*ExtractResult, len(results))
	for i, result := range results {
		extractResults[i] = result.(*ExtractResult)
	}
	return extractResults
}

// ListPDFs returns the PDF files directly under dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
