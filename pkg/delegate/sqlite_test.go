package delegate

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDB(t *testing.T, rows [][4]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE nodes (
		id TEXT PRIMARY KEY,
		parent_id TEXT,
		label TEXT,
		position INTEGER
	)`)
	require.NoError(t, err)
	for _, row := range rows {
		_, err = db.Exec("INSERT INTO nodes (id, parent_id, label, position) VALUES (?, ?, ?, ?)",
			row[0], row[1], row[2], row[3])
		require.NoError(t, err)
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := createTestDB(t, [][4]any{
		{"a", nil, "Alpha", 0},
		{"a2", "a", "Alpha Two", 1},
		{"a1", "a", "Alpha One", 0},
		{"b", "", "Beta", 1},
	})

	s, err := LoadSQLite(path, "")
	require.NoError(t, err)

	roots := s.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "a", roots[0].ID)
	assert.Equal(t, "b", roots[1].ID)

	// Siblings come back in position order regardless of insert order.
	kids := s.ChildrenOf(roots[0])
	require.Len(t, kids, 2)
	assert.Equal(t, "a1", kids[0].ID)
	assert.Equal(t, "a2", kids[1].ID)
	assert.Equal(t, 4, s.Len())
}

func TestLoadSQLitePromotesOrphansToRoot(t *testing.T) {
	path := createTestDB(t, [][4]any{
		{"a", "", "Alpha", 0},
		{"orphan", "missing", "Orphan", 1},
		{"loop", "loop", "Self Loop", 2},
	})

	s, err := LoadSQLite(path, "")
	require.NoError(t, err)
	require.Len(t, s.Roots(), 3)
}

func TestLoadSQLiteBreaksParentCycles(t *testing.T) {
	path := createTestDB(t, [][4]any{
		{"a", "b", "Alpha", 0},
		{"b", "a", "Beta", 1},
		{"r", "", "Root", 2},
	})

	s, err := LoadSQLite(path, "")
	require.NoError(t, err)

	// The a<->b cycle reaches no root; its first member in sort order is
	// promoted and detached from its parent, so no row is dropped.
	roots := s.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "r", roots[0].ID)
	assert.Equal(t, "a", roots[1].ID)
	require.Len(t, s.ChildrenOf(roots[1]), 1)
	assert.Equal(t, "b", s.ChildrenOf(roots[1])[0].ID)
	assert.Empty(t, s.ChildrenOf(roots[1])[0].Children)
	assert.Equal(t, 3, s.Len())
}

func TestLoadSQLiteRejectsBadTableName(t *testing.T) {
	path := createTestDB(t, nil)
	_, err := LoadSQLite(path, `nodes"; DROP TABLE nodes; --`)
	assert.ErrorContains(t, err, "invalid table name")
}

func TestLoadSQLiteRejectsDuplicateIDs(t *testing.T) {
	// Build the table without a primary key so the duplicate reaches the
	// loader.
	path := filepath.Join(t.TempDir(), "tree.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE nodes (id TEXT, parent_id TEXT, label TEXT, position INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO nodes VALUES ('x', '', 'one', 0), ('x', '', 'two', 1)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = LoadSQLite(path, "")
	assert.ErrorContains(t, err, "duplicate id")
}

func TestLoadSQLiteMissingTable(t *testing.T) {
	path := createTestDB(t, nil)
	_, err := LoadSQLite(path, "other_table")
	assert.Error(t, err)
}
