package model

import (
	"encoding/json"
	"strings"
)

// EntityRecord is one entity row from the graph index output.
// Entities are produced by the external indexing tool and are read-only
// inputs to validation.
type EntityRecord struct {
	ID          string   `parquet:"id" json:"id"`
	Title       string   `parquet:"title" json:"title"`
	Type        string   `parquet:"type,optional" json:"type"`
	Description string   `parquet:"description,optional" json:"description"`
	TextUnitIDs []string `parquet:"text_unit_ids,list,optional" json:"text_unit_ids"`
	Frequency   int32    `parquet:"frequency,optional" json:"frequency,omitempty"`
	Degree      int32    `parquet:"degree,optional" json:"degree,omitempty"`
}

// SourceFragment is one text unit row from the graph index output.
// Multiple entities may reference the same fragment.
type SourceFragment struct {
	ID      string `parquet:"id" json:"id"`
	Text    string `parquet:"text" json:"text"`
	NTokens int32  `parquet:"n_tokens,optional" json:"n_tokens,omitempty"`
}

// NormalizeTextUnitIDs returns the entity's fragment id list as a plain
// sequence. Some index versions store the list as a JSON-encoded string
// inside a single-element column value; that encoding is expanded here.
func (e *EntityRecord) NormalizeTextUnitIDs() []string {
	if len(e.TextUnitIDs) == 1 && strings.HasPrefix(strings.TrimSpace(e.TextUnitIDs[0]), "[") {
		var ids []string
		if err := json.Unmarshal([]byte(e.TextUnitIDs[0]), &ids); err == nil {
			return ids
		}
	}
	return e.TextUnitIDs
}
