// Package tree implements the core engine of flattree: a hierarchical data
// structure projected onto a flat, index-addressable sequence of visible
// rows, suitable for driving a virtualized list.
//
// The package is deliberately presentation-free. It knows nothing about
// terminals, widgets or animation timing; it maintains the tree, the
// flattened projection, and emits structural events describing exactly
// which rows entered or left the projection so that a view layer can
// animate and rebuild the right range.
//
// All types in this package follow a single-goroutine cooperative model:
// every mutation runs synchronously in the calling goroutine and the
// projection is consistent before any event reaches a subscriber.
package tree

// Delegate supplies the domain data the tree is built from. The engine
// never loads or persists domain data itself; it materializes nodes by
// asking the delegate for roots and children.
//
// Children ordering is the delegate's business: the engine preserves
// whatever order the delegate returns and never reorders silently.
type Delegate[T any] interface {
	// Roots returns the top-level items, in display order.
	Roots() []T

	// ChildrenOf returns the ordered children of item, or nil for leaves.
	ChildrenOf(item T) []T

	// IsLeaf reports whether item can never have children. Leaf nodes
	// cannot be expanded or collapsed.
	IsLeaf(item T) bool
}
