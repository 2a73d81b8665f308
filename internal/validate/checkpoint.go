package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/graphaudit/internal/model"
)

// CheckpointStore persists the accumulated result collection so an
// interrupted batch can resume. The collection is append-only in memory;
// on disk the file is rewritten wholesale at each checkpoint.
type CheckpointStore struct {
	path string
}

// NewCheckpointStore creates a store writing validation_results.json under
// cacheDir. The directory is created if missing.
func NewCheckpointStore(cacheDir string) (*CheckpointStore, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &CheckpointStore{
		path: filepath.Join(cacheDir, "validation_results.json"),
	}, nil
}

// Path returns the checkpoint file location.
func (s *CheckpointStore) Path() string {
	return s.path
}

// Load reads the persisted result collection. A missing file is an empty
// collection, not an error.
func (s *CheckpointStore) Load() ([]model.ValidationResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var results []model.ValidationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	return results, nil
}

// Save rewrites the checkpoint file with the full collection.
func (s *CheckpointStore) Save(results []model.ValidationResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// ProcessedIDs returns the set of entity ids already present in a result
// collection; this is the resume boundary.
func ProcessedIDs(results []model.ValidationResult) map[string]bool {
	ids := make(map[string]bool, len(results))
	for _, r := range results {
		ids[r.EntityID] = true
	}
	return ids
}
