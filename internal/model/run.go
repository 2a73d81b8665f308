package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Pipeline stage statuses.
const (
	StageStarting  = "starting"
	StageCompleted = "completed"
	StageFailed    = "failed"
	StageWarning   = "warning"
)

// StageEntry is one pipeline stage transition.
type StageEntry struct {
	Stage     string    `json:"stage"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// FileStats records what happened to one input document.
type FileStats struct {
	File           string `json:"file"`
	OriginalSize   int64  `json:"original_size"`
	ExtractedChars int    `json:"extracted_chars"`
	CleanedChars   int    `json:"cleaned_chars"`
	UsedOCR        bool   `json:"used_ocr"`
	FromCache      bool   `json:"from_cache"`
}

// RunResult is the persistent record of one pipeline run.
type RunResult struct {
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	Duration       string       `json:"duration"`
	Status         string       `json:"status"`
	Error          string       `json:"error,omitempty"`
	ProcessedFiles []FileStats  `json:"processed_files"`
	Errors         []string     `json:"errors"`
	Stages         []StageEntry `json:"pipeline_stages"`
}

// NewRunResult starts a run record.
func NewRunResult() *RunResult {
	return &RunResult{
		StartTime:      time.Now(),
		Status:         "running",
		ProcessedFiles: []FileStats{},
		Errors:         []string{},
		Stages:         []StageEntry{},
	}
}

// LogStage appends a stage transition.
func (r *RunResult) LogStage(stage, status, details string) {
	r.Stages = append(r.Stages, StageEntry{
		Stage:     stage,
		Status:    status,
		Timestamp: time.Now(),
		Details:   details,
	})
}

// Finish closes the record with the final status.
func (r *RunResult) Finish(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime).Round(time.Millisecond).String()
	if err != nil {
		r.Status = "failed"
		r.Error = err.Error()
		return
	}
	r.Status = "completed"
}

// Save writes the record as indented JSON.
func (r *RunResult) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run result: %w", err)
	}
	return nil
}
