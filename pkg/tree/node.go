package tree

// Node is one entry in the hierarchy, wrapping exactly one domain item.
//
// A node is a dumb data holder: it knows its parent, its children and its
// expansion flag, and nothing about its position in the flat projection or
// about animations. That knowledge lives in the Controller layer. Expand
// and Collapse flip the flag unconditionally; callers that need leaf and
// current-state guards go through the Controller.
type Node[T any] struct {
	item     T
	parent   *Node[T] // non-owning back-reference, nil for the root
	children []*Node[T]
	depth    int
	key      Key
	expanded bool
	disposed bool

	// viewIndex is the node's position in the flat projection, maintained
	// by the flattener. -1 while the node is hidden.
	viewIndex int
}

// Item returns the domain item this node wraps.
func (n *Node[T]) Item() T { return n.item }

// Parent returns the parent node, or nil for the root sentinel.
func (n *Node[T]) Parent() *Node[T] { return n.parent }

// Children returns the node's children in delegate order. The returned
// slice is owned by the node; callers must not mutate it.
func (n *Node[T]) Children() []*Node[T] { return n.children }

// Depth is the nesting level. The hidden root sentinel sits at depth 0,
// so top-level rows report depth 1.
func (n *Node[T]) Depth() int { return n.depth }

// Key returns the stable identity token assigned at build time.
func (n *Node[T]) Key() Key { return n.key }

// IsExpanded reports whether the node's subtree is currently revealed.
func (n *Node[T]) IsExpanded() bool { return n.expanded }

// IsLeaf reports whether the node has no children. Leaves cannot be
// expanded or collapsed.
func (n *Node[T]) IsLeaf() bool { return len(n.children) == 0 }

// IsRoot reports whether this is the hidden root sentinel.
func (n *Node[T]) IsRoot() bool { return n.parent == nil }

// IsRemovable reports whether the node may be dropped from the visible
// sequence when an ancestor collapses, i.e. whether it is currently
// revealed by its own parent. Nodes hidden inside an already-collapsed
// branch are not removable: they are not in the projection to begin with.
func (n *Node[T]) IsRemovable() bool {
	return n.parent != nil && n.parent.expanded
}

// IsDisposed reports whether Dispose has been called on this node.
func (n *Node[T]) IsDisposed() bool { return n.disposed }

// Expand reveals the node's subtree. This flips the flag unconditionally
// and does not touch the projection; use Controller.ExpandNode for the
// guarded, event-emitting path.
func (n *Node[T]) Expand() { n.expanded = true }

// Collapse hides the node's subtree. Same caveats as Expand.
func (n *Node[T]) Collapse() { n.expanded = false }

// Dispose releases the node. Disposing twice returns ErrNodeDisposed;
// internal state is not corrupted either way. By default nodes are
// disposed automatically when the owning controller is disposed.
func (n *Node[T]) Dispose() error {
	if n.disposed {
		return ErrNodeDisposed
	}
	n.disposed = true
	n.parent = nil
	n.viewIndex = -1
	return nil
}

// walk visits the node and every descendant in pre-order, including
// descendants hidden inside collapsed branches.
func (n *Node[T]) walk(visit func(*Node[T])) {
	visit(n)
	for _, child := range n.children {
		child.walk(visit)
	}
}

// visibleDescendants returns the node's descendants that are currently in
// the projection, in pre-order, pruning collapsed branches. The node
// itself is not included.
func (n *Node[T]) visibleDescendants() []*Node[T] {
	if !n.expanded || len(n.children) == 0 {
		return nil
	}
	var out []*Node[T]
	var rec func(*Node[T])
	rec = func(m *Node[T]) {
		out = append(out, m)
		if m.expanded {
			for _, child := range m.children {
				rec(child)
			}
		}
	}
	for _, child := range n.children {
		rec(child)
	}
	return out
}
