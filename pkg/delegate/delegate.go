// Package delegate provides ready-made tree.Delegate implementations for
// flattree: an in-memory static delegate, loaders that fill it from a
// JSON document or a SQLite adjacency table, and a debounced file watcher
// for triggering rebuilds when the backing data changes.
package delegate

import (
	"github.com/mz2/flattree/pkg/tree"
)

// Item is the generic hierarchical record the bundled delegates produce.
// ID doubles as the node key, so it must be unique across the document.
type Item struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Children []*Item `json:"children,omitempty"`
}

// Key returns the item's stable identity token. Wire this as the
// controller's KeyFunc.
func Key(it *Item) tree.Key { return tree.Key(it.ID) }

// Static is an in-memory tree.Delegate over Item records. It is immutable
// after construction; swap in a freshly loaded Static and call
// Controller.Rebuild when the underlying data changes.
type Static struct {
	roots []*Item
}

// NewStatic returns a delegate serving the given top-level items.
func NewStatic(roots []*Item) *Static {
	return &Static{roots: roots}
}

// Roots implements tree.Delegate.
func (s *Static) Roots() []*Item { return s.roots }

// ChildrenOf implements tree.Delegate.
func (s *Static) ChildrenOf(it *Item) []*Item { return it.Children }

// IsLeaf implements tree.Delegate.
func (s *Static) IsLeaf(it *Item) bool { return len(it.Children) == 0 }

// Len returns the total number of items in the delegate, all levels
// included.
func (s *Static) Len() int {
	count := 0
	var rec func(items []*Item)
	rec = func(items []*Item) {
		count += len(items)
		for _, it := range items {
			rec(it.Children)
		}
	}
	rec(s.roots)
	return count
}
