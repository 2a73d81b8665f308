package corpus

import (
	"testing"

	"github.com/ppiankov/graphaudit/internal/model"
)

func TestSourceTexts_OrderedLookup(t *testing.T) {
	c := New(
		[]model.EntityRecord{},
		[]model.SourceFragment{
			{ID: "u1", Text: "first fragment"},
			{ID: "u2", Text: "second fragment"},
			{ID: "u3", Text: "third fragment"},
		},
	)

	entity := &model.EntityRecord{
		ID:          "e1",
		Title:       "Test",
		TextUnitIDs: []string{"u3", "u1"},
	}

	texts := c.SourceTexts(entity)
	if len(texts) != 2 {
		t.Fatalf("expected 2 texts, got %d", len(texts))
	}
	if texts[0] != "third fragment" || texts[1] != "first fragment" {
		t.Errorf("fragment order not preserved: %v", texts)
	}
}

func TestSourceTexts_MissingFragmentsSkipped(t *testing.T) {
	c := New(
		[]model.EntityRecord{},
		[]model.SourceFragment{{ID: "u1", Text: "only fragment"}},
	)

	entity := &model.EntityRecord{
		ID:          "e1",
		TextUnitIDs: []string{"missing", "u1", "also-missing"},
	}

	texts := c.SourceTexts(entity)
	if len(texts) != 1 {
		t.Fatalf("expected missing ids to be skipped, got %d texts", len(texts))
	}
	if texts[0] != "only fragment" {
		t.Errorf("unexpected text: %q", texts[0])
	}
}

func TestSourceTexts_SerializedIDList(t *testing.T) {
	c := New(
		[]model.EntityRecord{},
		[]model.SourceFragment{
			{ID: "u1", Text: "one"},
			{ID: "u2", Text: "two"},
		},
	)

	// Some index versions persist the id list as a JSON string.
	entity := &model.EntityRecord{
		ID:          "e1",
		TextUnitIDs: []string{`["u1", "u2"]`},
	}

	texts := c.SourceTexts(entity)
	if len(texts) != 2 {
		t.Fatalf("expected serialized id list to be expanded, got %d texts", len(texts))
	}
}

func TestSourceTexts_NoFragments(t *testing.T) {
	c := New([]model.EntityRecord{}, []model.SourceFragment{})

	entity := &model.EntityRecord{ID: "e1", TextUnitIDs: nil}
	if texts := c.SourceTexts(entity); len(texts) != 0 {
		t.Errorf("expected no texts, got %v", texts)
	}
}
