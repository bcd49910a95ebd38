package delegate

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/mz2/flattree/pkg/tree"
)

// jsonDocument is the on-disk shape for JSON-backed trees:
//
//	{
//	  "roots": [
//	    {"id": "a", "label": "Alpha", "children": [
//	      {"id": "a1", "label": "Alpha One"}
//	    ]}
//	  ]
//	}
type jsonDocument struct {
	Roots []*Item `json:"roots"`
}

// LoadJSON reads a tree document from path and returns a Static delegate
// over it. Duplicate IDs are rejected up front since they would break key
// stability downstream.
func LoadJSON(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree document: %w", err)
	}
	return ParseJSON(data)
}

// ParseJSON builds a Static delegate from raw JSON document bytes.
func ParseJSON(data []byte) (*Static, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tree document: %w", err)
	}
	if err := validateItems(doc.Roots); err != nil {
		return nil, err
	}
	return NewStatic(doc.Roots), nil
}

// MarshalSnapshot renders an expansion snapshot as indented JSON, for
// dumping view state on demand.
func MarshalSnapshot(snap map[tree.Key]bool) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// validateItems checks IDs are present and unique across the document.
func validateItems(roots []*Item) error {
	seen := make(map[string]bool)
	var rec func(items []*Item) error
	rec = func(items []*Item) error {
		for _, it := range items {
			if it == nil {
				return fmt.Errorf("tree document: null item")
			}
			if it.ID == "" {
				return fmt.Errorf("tree document: item %q has no id", it.Label)
			}
			if seen[it.ID] {
				return fmt.Errorf("tree document: duplicate id %q", it.ID)
			}
			seen[it.ID] = true
			if err := rec(it.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return rec(roots)
}
