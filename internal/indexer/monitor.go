package indexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Keyword sets used to classify subprocess output lines.
var (
	progressKeywords = []string{
		"embedding", "chunk", "entity", "relationship", "community",
		"processing", "stage", "step", "progress", "complete",
	}
	errorKeywords = []string{"error", "fail", "exception"}
	warnKeywords  = []string{"warning", "warn"}
)

type streamLine struct {
	text   string
	stderr bool
}

// monitor consumes subprocess output, highlighting progress and problems,
// and keeps the terminal alive during long silent stretches. The hang
// warning is advisory: the tool is API-bound and a stall usually means
// provider rate limiting, so the process is never killed here.
type monitor struct {
	out            io.Writer
	heartbeatEvery time.Duration
	hangAfter      time.Duration
}

func newMonitor(out io.Writer, heartbeatEvery, hangAfter time.Duration) *monitor {
	return &monitor{
		out:            out,
		heartbeatEvery: heartbeatEvery,
		hangAfter:      hangAfter,
	}
}

// watch blocks until both streams are drained.
func (m *monitor) watch(stdout, stderr io.Reader, started time.Time) {
	lines := make(chan streamLine, 64)

	var wg sync.WaitGroup
	wg.Add(2)
	go readLines(stdout, false, lines, &wg)
	go readLines(stderr, true, lines, &wg)
	go func() {
		wg.Wait()
		close(lines)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastOutput := time.Now()
	lastHeartbeat := time.Now()
	hangWarned := false

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			m.classify(line)
			lastOutput = time.Now()
			hangWarned = false

		case now := <-ticker.C:
			if now.Sub(lastHeartbeat) >= m.heartbeatEvery {
				elapsed := now.Sub(started).Round(time.Second)
				fmt.Fprintf(m.out, "Indexer running... elapsed: %s\n", elapsed)
				lastHeartbeat = now
			}
			if !hangWarned && now.Sub(lastOutput) > m.hangAfter {
				color.New(color.FgYellow).Fprintf(m.out,
					"No output for %s, the indexer may be hung (provider rate limits are the usual cause)\n",
					m.hangAfter)
				hangWarned = true
			}
		}
	}
}

func (m *monitor) classify(line streamLine) {
	lower := strings.ToLower(line.text)

	switch {
	case line.stderr && containsAny(lower, errorKeywords):
		color.New(color.FgRed).Fprintf(m.out, "ERROR: %s\n", line.text)
	case line.stderr && containsAny(lower, warnKeywords):
		color.New(color.FgYellow).Fprintf(m.out, "WARNING: %s\n", line.text)
	case containsAny(lower, progressKeywords):
		fmt.Fprintf(m.out, "PROGRESS: %s\n", line.text)
	default:
		fmt.Fprintf(m.out, "  %s\n", line.text)
	}
}

func readLines(r io.Reader, stderr bool, lines chan<- streamLine, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			lines <- streamLine{text: text, stderr: stderr}
		}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
