package tree

import "fmt"

// Key is the stable identity token assigned to every node. Keys drive
// animation targeting and row recycling in the view layer, so they must be
// stable across rebuilds: the same logical item must always map to the
// same key.
type Key string

// KeyFunc derives a Key from a domain item.
//
// The function must be pure and deterministic, and distinct items must map
// to distinct keys. Violating either property corrupts animation and
// recycling correctness (wrong rows animate, stale rows reappear). This is
// a caller contract; the engine does not defend against it at runtime.
type KeyFunc[T any] func(item T) Key

// DefaultKeyFunc derives the key from the item's printed value identity.
// Items whose string form is not unique, or whose value changes over time,
// need a custom KeyFunc instead.
func DefaultKeyFunc[T any](item T) Key {
	return Key(fmt.Sprint(item))
}
