package validate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/graphaudit/internal/model"
	"github.com/schollz/progressbar/v3"
)

// BatchRunner drives a validator across the entity collection with
// checkpointing, resume, and per-entity failure isolation.
//
// Processing is sequential by design: one in-flight call keeps remote rate
// limits simple, and the append-only result collection stays single-writer
// so no locking is needed. There is no timeout past what the underlying
// client enforces; a hung call stalls the batch.
type BatchRunner struct {
	validator Validator
	entities  []model.EntityRecord
	store     *CheckpointStore
	cfg       model.ValidationConfig
	progress  io.Writer // nil disables the progress bar and status lines
}

// NewBatchRunner creates a runner over the given entity collection.
func NewBatchRunner(validator Validator, entities []model.EntityRecord, store *CheckpointStore, cfg model.ValidationConfig) *BatchRunner {
	return &BatchRunner{
		validator: validator,
		entities:  entities,
		store:     store,
		cfg:       cfg,
		progress:  os.Stderr,
	}
}

// SetProgress redirects (or with nil, silences) batch progress output.
func (r *BatchRunner) SetProgress(w io.Writer) {
	r.progress = w
}

// Run validates the collection. With resume, already-checkpointed entities
// are excluded from the work queue. A limit of 0 means no limit; a positive
// limit caps the not-yet-processed entities, not the whole collection.
func (r *BatchRunner) Run(ctx context.Context, limit int, resume bool) ([]model.ValidationResult, error) {
	var results []model.ValidationResult
	processed := map[string]bool{}

	if resume {
		cached, err := r.store.Load()
		if err != nil {
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
		results = cached
		processed = ProcessedIDs(cached)
		if len(processed) > 0 {
			r.statusf("Resuming: %d entities already validated\n", len(processed))
		}
	}

	var queue []model.EntityRecord
	for _, e := range r.entities {
		if !processed[e.ID] {
			queue = append(queue, e)
		}
	}
	if limit > 0 && len(queue) > limit {
		queue = queue[:limit]
	}

	r.statusf("Validating %d entities...\n", len(queue))

	var bar *progressbar.ProgressBar
	if r.progress != nil {
		bar = progressbar.NewOptions(len(queue),
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription("Validating entities"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	checkpointEvery := r.cfg.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = 10
	}

	for _, entity := range queue {
		if err := ctx.Err(); err != nil {
			break
		}

		result, err := r.validator.ValidateEntity(ctx, &entity)
		if err != nil {
			// One bad entity never aborts the batch.
			r.statusf("\nError validating entity %s: %v\n", entity.Title, err)
			if bar != nil {
				_ = bar.Add(1)
			}
			continue
		}

		results = append(results, *result)
		if bar != nil {
			_ = bar.Add(1)
		}

		if len(results)%checkpointEvery == 0 {
			if err := r.store.Save(results); err != nil {
				return nil, fmt.Errorf("save checkpoint: %w", err)
			}
		}
	}

	// Unconditional final save: the batch size is rarely a multiple of the
	// checkpoint interval, and an early stop still leaves a valid resume
	// point.
	if err := r.store.Save(results); err != nil {
		return nil, fmt.Errorf("save results: %w", err)
	}

	return results, nil
}

func (r *BatchRunner) statusf(format string, args ...any) {
	if r.progress != nil {
		fmt.Fprintf(r.progress, format, args...)
	}
}
