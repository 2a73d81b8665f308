// Package corpus loads the external indexer's entity and text-unit datasets
// and resolves entities back to the source fragments they were extracted from.
package corpus

import (
	"fmt"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/ppiankov/graphaudit/internal/model"
)

// Corpus holds the loaded entity collection and a fragment lookup table.
type Corpus struct {
	Entities  []model.EntityRecord
	fragments map[string]string
}

// Load reads entities.parquet and text_units.parquet from the indexer output
// directory. Both datasets are loaded once; lookups afterwards are in-memory.
func Load(outputDir string) (*Corpus, error) {
	entities, err := parquet.ReadFile[model.EntityRecord](filepath.Join(outputDir, "entities.parquet"))
	if err != nil {
		return nil, fmt.Errorf("read entities: %w", err)
	}

	units, err := parquet.ReadFile[model.SourceFragment](filepath.Join(outputDir, "text_units.parquet"))
	if err != nil {
		return nil, fmt.Errorf("read text units: %w", err)
	}

	return New(entities, units), nil
}

// New builds a corpus from already-loaded records.
func New(entities []model.EntityRecord, units []model.SourceFragment) *Corpus {
	fragments := make(map[string]string, len(units))
	for _, u := range units {
		fragments[u.ID] = u.Text
	}
	return &Corpus{
		Entities:  entities,
		fragments: fragments,
	}
}

// FragmentCount returns the number of loaded text units.
func (c *Corpus) FragmentCount() int {
	return len(c.fragments)
}

// SourceTexts returns the ordered fragment bodies an entity is grounded in.
// Fragment ids missing from the corpus are skipped rather than treated as
// errors: partial fragment loss degrades validation but must not block it.
func (c *Corpus) SourceTexts(entity *model.EntityRecord) []string {
	ids := entity.NormalizeTextUnitIDs()

	var texts []string
	for _, id := range ids {
		if text, ok := c.fragments[id]; ok {
			texts = append(texts, text)
		}
	}
	return texts
}
