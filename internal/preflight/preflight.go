// Package preflight validates the environment before a pipeline run. The
// full pipeline burns real API budget and OCR time; catching a placeholder
// credential or a stopped OCR service here is much cheaper than failing an
// hour in.
package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/ppiankov/graphaudit/internal/model"
	"github.com/ppiankov/graphaudit/internal/ocr"
	"github.com/ppiankov/graphaudit/internal/worker"
)

// Check is one environment requirement.
type Check struct {
	Name string
	Run  func(ctx context.Context) (ok bool, detail string)
}

// Report is the outcome of a preflight run.
type Report struct {
	Passed int
	Failed int
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return r.Failed == 0
}

// Checker runs the environment checks for a configuration.
type Checker struct {
	cfg *model.Config
	out io.Writer
}

// NewChecker creates a preflight checker writing check marks to out.
func NewChecker(cfg *model.Config, out io.Writer) *Checker {
	if out == nil {
		out = io.Discard
	}
	return &Checker{cfg: cfg, out: out}
}

// Run executes all checks, printing one line per check. Every check runs
// even after a failure so the operator sees the complete picture.
func (c *Checker) Run(ctx context.Context) Report {
	fmt.Fprintln(c.out, "Validating pipeline setup")
	fmt.Fprintln(c.out, strings.Repeat("=", 50))

	report := Report{}
	for _, check := range c.checks() {
		ok, detail := check.Run(ctx)
		c.mark(ok, check.Name, detail)
		if ok {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	fmt.Fprintln(c.out, strings.Repeat("=", 50))
	if report.OK() {
		color.New(color.FgGreen).Fprintln(c.out, "Setup validation passed, ready to run the pipeline")
	} else {
		color.New(color.FgRed).Fprintf(c.out, "Setup validation failed (%d problem(s))\n", report.Failed)
		fmt.Fprintln(c.out, "Common fixes:")
		fmt.Fprintln(c.out, "  - copy .env.template to .env and fill in API keys")
		fmt.Fprintln(c.out, "  - start the Stirling PDF container")
		fmt.Fprintf(c.out, "  - put at least one PDF into %s\n", c.cfg.Paths.InputPDFDir)
	}
	return report
}

func (c *Checker) checks() []Check {
	return []Check{
		{Name: "API credential configured", Run: c.checkCredential},
		{Name: "Stirling PDF service reachable", Run: c.checkStirling},
		{Name: "Input PDFs present", Run: c.checkInputPDFs},
		{Name: "Cache directory writable", Run: c.checkCacheDir},
		{Name: "Index project structure", Run: c.checkIndexStructure},
	}
}

// placeholder values shipped in .env.template
var placeholderKeys = map[string]bool{
	"your_groq_api_key_here":   true,
	"your_openai_api_key_here": true,
	"changeme":                 true,
}

func (c *Checker) checkCredential(_ context.Context) (bool, string) {
	provider := c.cfg.LLM.Provider
	if provider == "" || provider == "none" {
		return true, "LLM disabled, skipping"
	}

	var envVars []string
	switch provider {
	case "groq":
		envVars = []string{"GROQ_API_KEY"}
	case "openai":
		envVars = []string{"OPENAI_API_KEY"}
	case "anthropic", "claude":
		envVars = []string{"ANTHROPIC_API_KEY"}
	case "ollama":
		return true, "local provider, no credential needed"
	default:
		envVars = []string{strings.ToUpper(provider) + "_API_KEY"}
	}

	for _, name := range envVars {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			return false, name + " not set"
		}
		if placeholderKeys[value] {
			return false, name + " still holds the template placeholder"
		}
	}
	return true, ""
}

func (c *Checker) checkStirling(ctx context.Context) (bool, string) {
	client := ocr.NewClient(c.cfg.OCR, nil)
	if !client.IsAvailable(ctx) {
		return false, c.cfg.OCR.StirlingURL + " not responding"
	}
	return true, c.cfg.OCR.StirlingURL
}

func (c *Checker) checkInputPDFs(_ context.Context) (bool, string) {
	paths, err := worker.ListPDFs(c.cfg.Paths.InputPDFDir)
	if err != nil {
		return false, fmt.Sprintf("cannot read %s: %v", c.cfg.Paths.InputPDFDir, err)
	}
	if len(paths) == 0 {
		return false, "no PDF files in " + c.cfg.Paths.InputPDFDir
	}
	return true, fmt.Sprintf("%d file(s), first: %s", len(paths), filepath.Base(paths[0]))
}

func (c *Checker) checkCacheDir(_ context.Context) (bool, string) {
	dir := c.cfg.Cache.Dir
	if !c.cfg.Cache.Enabled {
		return true, "caching disabled"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, err.Error()
	}
	probe := filepath.Join(dir, ".preflight")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return false, err.Error()
	}
	_ = os.Remove(probe)
	return true, dir
}

// checkIndexStructure is advisory for the run command (the pipeline creates
// the structure itself) but a hard requirement for validate and query.
func (c *Checker) checkIndexStructure(_ context.Context) (bool, string) {
	dir := c.cfg.Paths.GraphragDir
	if _, err := os.Stat(dir); err != nil {
		return false, dir + " missing (run the pipeline first)"
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.yaml")); err != nil {
		return false, "settings.yaml missing under " + dir
	}
	return true, ""
}

func (c *Checker) mark(ok bool, name, detail string) {
	symbol := color.New(color.FgGreen).Sprint("✓")
	if !ok {
		symbol = color.New(color.FgRed).Sprint("✗")
	}
	if detail != "" {
		fmt.Fprintf(c.out, "%s %s (%s)\n", symbol, name, detail)
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", symbol, name)
}
