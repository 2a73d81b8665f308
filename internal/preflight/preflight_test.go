package preflight

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/graphaudit/internal/model"
)

func testConfig(t *testing.T, stirlingURL string) *model.Config {
	t.Helper()
	tmp := t.TempDir()

	cfg := model.DefaultConfig()
	cfg.OCR.StirlingURL = stirlingURL
	cfg.Paths.InputPDFDir = filepath.Join(tmp, "input")
	cfg.Paths.GraphragDir = filepath.Join(tmp, "graphrag")
	cfg.Cache.Dir = filepath.Join(tmp, "cache")
	return cfg
}

func setupHealthyEnv(t *testing.T, cfg *model.Config) {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "gsk_live_test")

	if err := os.MkdirAll(cfg.Paths.InputPDFDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.InputPDFDir, "doc.pdf"), []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Paths.GraphragDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.GraphragDir, "settings.yaml"), []byte("llm: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPreflightAllPass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	setupHealthyEnv(t, cfg)

	var buf bytes.Buffer
	report := NewChecker(cfg, &buf).Run(context.Background())

	if !report.OK() {
		t.Errorf("report = %+v, want all checks passed\n%s", report, buf.String())
	}
	if !strings.Contains(buf.String(), "Setup validation passed") {
		t.Errorf("missing pass banner:\n%s", buf.String())
	}
}

func TestPreflightPlaceholderCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	setupHealthyEnv(t, cfg)
	t.Setenv("GROQ_API_KEY", "your_groq_api_key_here")

	var buf bytes.Buffer
	report := NewChecker(cfg, &buf).Run(context.Background())

	if report.OK() {
		t.Error("placeholder credential passed preflight")
	}
	if !strings.Contains(buf.String(), "placeholder") {
		t.Errorf("missing placeholder diagnostic:\n%s", buf.String())
	}
}

func TestPreflightMissingPDFs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	setupHealthyEnv(t, cfg)
	// Empty the input dir again.
	if err := os.Remove(filepath.Join(cfg.Paths.InputPDFDir, "doc.pdf")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	report := NewChecker(cfg, &buf).Run(context.Background())

	if report.OK() {
		t.Error("empty input dir passed preflight")
	}
	if !strings.Contains(buf.String(), "no PDF files") {
		t.Errorf("missing PDF diagnostic:\n%s", buf.String())
	}
}

// A failure must not stop the remaining checks.
func TestPreflightRunsAllChecks(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1") // nothing listening
	setupHealthyEnv(t, cfg)

	var buf bytes.Buffer
	report := NewChecker(cfg, &buf).Run(context.Background())

	if report.Passed+report.Failed != 5 {
		t.Errorf("ran %d checks, want 5", report.Passed+report.Failed)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want only the service check\n%s", report.Failed, buf.String())
	}
}

func TestPreflightDisabledLLMSkipsCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	setupHealthyEnv(t, cfg)
	cfg.LLM.Provider = ""
	t.Setenv("GROQ_API_KEY", "")

	var buf bytes.Buffer
	report := NewChecker(cfg, &buf).Run(context.Background())
	if !report.OK() {
		t.Errorf("disabled LLM failed preflight:\n%s", buf.String())
	}
}
