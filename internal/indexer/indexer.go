// Package indexer drives the external GraphRAG indexing tool as a
// subprocess. The tool is opaque: this package manages its project
// directory, runs init/index/query, and streams its output with heartbeat
// and hang detection. Indexing is API-bound on the model provider side, so
// runs take minutes to hours and silence is the main failure signal.
package indexer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	initTimeout = 120 * time.Second

	// Conservative indexing throughput used for the time estimate.
	charsPerMinute = 50_000
)

// Runner manages one GraphRAG project directory.
type Runner struct {
	dir     string
	command []string
	out     io.Writer

	heartbeatEvery time.Duration
	hangAfter      time.Duration
}

// NewRunner creates a runner for the project rooted at dir. The default
// subprocess command is the graphrag CLI on PATH.
func NewRunner(dir string) *Runner {
	return &Runner{
		dir:            dir,
		command:        []string{"graphrag"},
		out:            os.Stderr,
		heartbeatEvery: 30 * time.Second,
		hangAfter:      5 * time.Minute,
	}
}

// SetCommand overrides the subprocess command, e.g. to run the tool through
// a specific interpreter ("python3", "-m", "graphrag").
func (r *Runner) SetCommand(command ...string) {
	if len(command) > 0 {
		r.command = command
	}
}

// SetOutput redirects (or with nil, silences) monitor output.
func (r *Runner) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	r.out = w
}

// Dir returns the project root.
func (r *Runner) Dir() string {
	return r.dir
}

// InputDir returns the directory the indexing tool reads documents from.
func (r *Runner) InputDir() string {
	return filepath.Join(r.dir, "input")
}

// Setup creates the project directory layout. When fastSettings names an
// existing settings file it is validated and installed as the project's
// settings.yaml; otherwise the tool's own init generates one.
func (r *Runner) Setup(fastSettings string) error {
	for _, dir := range []string{r.dir, r.InputDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create project dir: %w", err)
		}
	}

	if fastSettings == "" {
		return nil
	}
	if _, err := os.Stat(fastSettings); os.IsNotExist(err) {
		return nil
	}
	return installSettings(fastSettings, filepath.Join(r.dir, "settings.yaml"))
}

// CopyInputs places processed text files into the project input directory.
func (r *Runner) CopyInputs(paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read input %s: %w", path, err)
		}
		dest := filepath.Join(r.InputDir(), filepath.Base(path))
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return fmt.Errorf("copy input to %s: %w", dest, err)
		}
	}
	return nil
}

// NeedsInit reports whether the project still lacks a settings.yaml.
func (r *Runner) NeedsInit() bool {
	_, err := os.Stat(filepath.Join(r.dir, "settings.yaml"))
	return os.IsNotExist(err)
}

// Init runs the tool's project initialization. Init is quick and
// non-interactive, so it gets a hard timeout instead of live monitoring.
func (r *Runner) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	cmd := r.exec(ctx, "init", "--root", ".")
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("indexer init timed out after %s", initTimeout)
		}
		return fmt.Errorf("indexer init failed: %w\n%s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Index runs the indexing pass with live output monitoring. On failure the
// tail of the newest log under output/ is included in the error, since the
// tool's useful diagnostics land there rather than on stderr.
func (r *Runner) Index(ctx context.Context) error {
	started := time.Now()

	if files, totalBytes, err := r.inputStats(); err == nil {
		fmt.Fprintf(r.out, "Input files: %d files, %d bytes total\n", files, totalBytes)
		if estimate := EstimateMinutes(totalBytes); estimate >= 1 {
			fmt.Fprintf(r.out, "Estimated indexing time: %.1f minutes (API-bound)\n", estimate)
		}
	}

	cmd := r.exec(ctx, "index", "--root", ".", "--verbose")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start indexer: %w", err)
	}

	monitor := newMonitor(r.out, r.heartbeatEvery, r.hangAfter)
	monitor.watch(stdout, stderr, started)

	if err := cmd.Wait(); err != nil {
		elapsed := time.Since(started).Round(time.Second)
		detail := r.logTail()
		if detail != "" {
			return fmt.Errorf("indexing failed after %s: %w\nlast log entries:\n%s", elapsed, err, detail)
		}
		return fmt.Errorf("indexing failed after %s: %w", elapsed, err)
	}

	elapsed := time.Since(started).Round(time.Second)
	fmt.Fprintf(r.out, "Indexing completed in %s\n", elapsed)
	if artifacts := r.ArtifactCount(); artifacts > 0 {
		fmt.Fprintf(r.out, "Generated %d output artifacts in %s\n", artifacts, filepath.Join(r.dir, "output"))
	}
	return nil
}

// Query runs one query against the indexed graph. method is "global" or
// "local".
func (r *Runner) Query(ctx context.Context, question, method string) (string, error) {
	if method == "" {
		method = "global"
	}
	cmd := r.exec(ctx, "query", "--root", ".", "--method", method, "--query", question)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("query failed: %w\n%s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ArtifactCount counts files under the project output directory.
func (r *Runner) ArtifactCount() int {
	count := 0
	_ = filepath.WalkDir(filepath.Join(r.dir, "output"), func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// EstimateMinutes predicts indexing duration from input size.
func EstimateMinutes(totalChars int64) float64 {
	return float64(totalChars) / charsPerMinute
}

func (r *Runner) exec(ctx context.Context, args ...string) *exec.Cmd {
	full := append(append([]string{}, r.command[1:]...), args...)
	cmd := exec.CommandContext(ctx, r.command[0], full...)
	cmd.Dir = r.dir
	return cmd
}

func (r *Runner) inputStats() (files int, totalBytes int64, err error) {
	entries, err := os.ReadDir(r.InputDir())
	if err != nil {
		return 0, 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		totalBytes += info.Size()
	}
	return files, totalBytes, nil
}

// logTail returns the last part of the newest .log file under output/.
func (r *Runner) logTail() string {
	var newest string
	var newestMod time.Time
	_ = filepath.WalkDir(filepath.Join(r.dir, "output"), func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".log") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(newestMod) {
			newest, newestMod = path, info.ModTime()
		}
		return nil
	})
	if newest == "" {
		return ""
	}

	data, err := os.ReadFile(newest)
	if err != nil {
		return ""
	}
	const tailBytes = 2000
	if len(data) > tailBytes {
		data = data[len(data)-tailBytes:]
	}
	return strings.TrimSpace(string(data))
}
