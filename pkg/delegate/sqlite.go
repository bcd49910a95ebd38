package delegate

import (
	"database/sql"
	"fmt"
	"regexp"
	"sort"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// LoadSQLite reads an adjacency-list table from a SQLite database and
// returns a Static delegate over it. The table must carry the columns
// id (TEXT, unique), parent_id (TEXT, empty or NULL for roots),
// label (TEXT) and position (INTEGER, sibling sort order).
func LoadSQLite(path, table string) (*Static, error) {
	if table == "" {
		table = "nodes"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(
		"SELECT id, COALESCE(parent_id, ''), label, COALESCE(position, 0) FROM %q", table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	type record struct {
		item     *Item
		parentID string
		position int
	}
	var records []record
	items := make(map[string]*Item)
	for rows.Next() {
		var id, parentID, label string
		var position int
		if err := rows.Scan(&id, &parentID, &label, &position); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		if id == "" {
			return nil, fmt.Errorf("%s: row with empty id", table)
		}
		if _, dup := items[id]; dup {
			return nil, fmt.Errorf("%s: duplicate id %q", table, id)
		}
		it := &Item{ID: id, Label: label}
		items[id] = it
		records = append(records, record{item: it, parentID: parentID, position: position})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	// Stable sibling order: position first, id as tiebreaker.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].position != records[j].position {
			return records[i].position < records[j].position
		}
		return records[i].item.ID < records[j].item.ID
	})

	var roots []*Item
	for _, rec := range records {
		parent, ok := items[rec.parentID]
		if rec.parentID == "" || !ok || parent == rec.item {
			// No parent, a dangling reference, or a self-loop: promote to
			// root rather than dropping the subtree.
			roots = append(roots, rec.item)
			continue
		}
		parent.Children = append(parent.Children, rec.item)
	}

	// A parent_id cycle (a -> b -> a) leaves its members linked to each
	// other but reachable from no root. Promote the first member in sort
	// order, detaching it from its parent to break the loop.
	reachable := make(map[string]bool)
	var mark func(it *Item)
	mark = func(it *Item) {
		if reachable[it.ID] {
			return
		}
		reachable[it.ID] = true
		for _, child := range it.Children {
			mark(child)
		}
	}
	for _, it := range roots {
		mark(it)
	}
	for _, rec := range records {
		if reachable[rec.item.ID] {
			continue
		}
		if parent, ok := items[rec.parentID]; ok {
			parent.Children = removeChild(parent.Children, rec.item)
		}
		roots = append(roots, rec.item)
		mark(rec.item)
	}

	return NewStatic(roots), nil
}

func removeChild(children []*Item, target *Item) []*Item {
	for i, c := range children {
		if c == target {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}
