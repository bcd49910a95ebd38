package delegate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz2/flattree/pkg/tree"
)

const sampleDocument = `{
  "roots": [
    {"id": "a", "label": "Alpha", "children": [
      {"id": "a1", "label": "Alpha One"},
      {"id": "a2", "label": "Alpha Two"}
    ]},
    {"id": "b", "label": "Beta"}
  ]
}`

func TestParseJSON(t *testing.T) {
	s, err := ParseJSON([]byte(sampleDocument))
	require.NoError(t, err)

	roots := s.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "Alpha", roots[0].Label)
	assert.False(t, s.IsLeaf(roots[0]))
	assert.True(t, s.IsLeaf(roots[1]))

	kids := s.ChildrenOf(roots[0])
	require.Len(t, kids, 2)
	assert.Equal(t, "a1", kids[0].ID)
	assert.Equal(t, 4, s.Len())
}

func TestParseJSONRejectsDuplicateIDs(t *testing.T) {
	_, err := ParseJSON([]byte(`{"roots": [{"id": "x", "label": "one"}, {"id": "x", "label": "two"}]}`))
	assert.ErrorContains(t, err, "duplicate id")
}

func TestParseJSONRejectsMissingID(t *testing.T) {
	_, err := ParseJSON([]byte(`{"roots": [{"label": "anonymous"}]}`))
	assert.ErrorContains(t, err, "no id")
}

func TestParseJSONRejectsGarbage(t *testing.T) {
	_, err := ParseJSON([]byte("not json"))
	assert.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o644))

	s, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())

	_, err = LoadJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestItemKeyIsID(t *testing.T) {
	it := &Item{ID: "a1", Label: "Alpha One"}
	assert.Equal(t, tree.Key("a1"), Key(it))
}

func TestMarshalSnapshot(t *testing.T) {
	out, err := MarshalSnapshot(map[tree.Key]bool{"a": true, "b": false})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"a": true`)
	assert.Contains(t, string(out), `"b": false`)
}
