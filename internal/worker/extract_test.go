package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ppiankov/graphaudit/internal/ocr"
)

// mockExtractor returns canned text per path.
type mockExtractor struct {
	failOn map[string]bool
}

func (e *mockExtractor) ExtractFile(_ context.Context, path string) (*ocr.Result, error) {
	if e.failOn[path] {
		return nil, errors.New("extraction failed")
	}
	return &ocr.Result{Text: "text of " + filepath.Base(path)}, nil
}

func TestExtractBatch(t *testing.T) {
	paths := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"}
	batch := NewExtractBatch(&mockExtractor{failOn: map[string]bool{"c.pdf": true}}, 2)

	results := batch.ProcessFiles(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
			if r.Path != "c.pdf" {
				t.Errorf("unexpected failure for %s", r.Path)
			}
			continue
		}
		if r.Text != "text of "+filepath.Base(r.Path) {
			t.Errorf("text for %s = %q", r.Path, r.Text)
		}
	}
	if failures != 1 {
		t.Errorf("got %d failures, want 1", failures)
	}
}

func TestExtractBatchEmpty(t *testing.T) {
	batch := NewExtractBatch(&mockExtractor{}, 2)
	if results := batch.ProcessFiles(context.Background(), nil); len(results) != 0 {
		t.Errorf("got %d results for empty input", len(results))
	}
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0755); err != nil {
		t.Fatal(err)
	}

	paths, err := ListPDFs(dir)
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.PDF"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.pdf"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}
