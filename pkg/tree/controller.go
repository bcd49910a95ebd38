// controller.go - Guarded expansion operations and tree lifecycle
package tree

import (
	"errors"

	"github.com/charmbracelet/log"
)

// DefaultExpansion is the initial expansion predicate used when no
// WithInitialExpansion option is given: the first two row levels start
// revealed, deeper branches start collapsed.
func DefaultExpansion[T any](item T, depth int) bool {
	return depth <= 2
}

// Controller owns one tree and its flat projection. It is the only
// mutation path that keeps the expansion flags, the projection and the
// event stream consistent: within one operation the projection is spliced
// before the structural event reaches any subscriber, so subscribers
// querying TreeSize or NodeAt during delivery observe post-mutation state.
//
// A Controller is not safe for concurrent use; all operations must run in
// one goroutine (in a bubbletea host, the update loop).
type Controller[T any] struct {
	delegate Delegate[T]
	keyOf    KeyFunc[T]
	initial  func(item T, depth int) bool

	root  *Node[T]
	byKey map[Key]*Node[T]
	flat  flattener[T]

	events       *Dispatcher[T]
	disposeNodes bool
	disposed     bool
	logger       *log.Logger
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithKeyFunc sets the key factory. Defaults to DefaultKeyFunc.
func WithKeyFunc[T any](fn KeyFunc[T]) Option[T] {
	return func(c *Controller[T]) { c.keyOf = fn }
}

// WithInitialExpansion sets the predicate deciding which nodes start
// expanded when the tree is (re)built. Defaults to DefaultExpansion.
func WithInitialExpansion[T any](fn func(item T, depth int) bool) Option[T] {
	return func(c *Controller[T]) { c.initial = fn }
}

// WithoutNodeDisposal leaves node lifetimes to the caller: Dispose will
// tear down the dispatcher but not the nodes. This risks leaking
// node-attached resources and is surfaced as a warning at dispose time.
func WithoutNodeDisposal[T any]() Option[T] {
	return func(c *Controller[T]) { c.disposeNodes = false }
}

// WithLogger sets the diagnostics logger. Defaults to log.Default().
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(c *Controller[T]) { c.logger = l }
}

// NewController materializes the tree from the delegate and returns a
// controller over it. Children are materialized eagerly; a delegate whose
// data changes later triggers Rebuild.
func NewController[T any](delegate Delegate[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		delegate:     delegate,
		keyOf:        DefaultKeyFunc[T],
		initial:      DefaultExpansion[T],
		events:       NewDispatcher[T](),
		disposeNodes: true,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.build()
	return c
}

// build materializes the node tree from the delegate. The root sentinel
// holds the top-level rows as children, is always expanded and is never
// part of the projection.
func (c *Controller[T]) build() {
	c.byKey = make(map[Key]*Node[T])
	c.root = &Node[T]{expanded: true, viewIndex: -1}
	for _, item := range c.delegate.Roots() {
		c.root.children = append(c.root.children, c.buildNode(item, c.root))
	}
	c.flat = flattener[T]{root: c.root}
}

func (c *Controller[T]) buildNode(item T, parent *Node[T]) *Node[T] {
	n := &Node[T]{
		item:      item,
		parent:    parent,
		depth:     parent.depth + 1,
		key:       c.keyOf(item),
		viewIndex: -1,
	}
	c.byKey[n.key] = n
	if !c.delegate.IsLeaf(item) {
		for _, child := range c.delegate.ChildrenOf(item) {
			n.children = append(n.children, c.buildNode(child, n))
		}
	}
	// Leaves are never expanded; the flag would be meaningless.
	n.expanded = len(n.children) > 0 && c.initial(item, n.depth)
	return n
}

// Root returns the hidden root sentinel.
func (c *Controller[T]) Root() *Node[T] { return c.root }

// TreeSize returns the number of nodes currently in the projection.
func (c *Controller[T]) TreeSize() int { return c.flat.size() }

// NodeAt returns the node at the given projection index.
func (c *Controller[T]) NodeAt(index int) (*Node[T], error) {
	if n := c.flat.nodeAt(index); n != nil {
		return n, nil
	}
	return nil, ErrOutOfRange
}

// IndexOf returns n's position in the projection, or -1 while hidden.
func (c *Controller[T]) IndexOf(n *Node[T]) int { return c.flat.indexOf(n) }

// NodeByKey returns the node carrying the given key, or nil.
func (c *Controller[T]) NodeByKey(key Key) *Node[T] { return c.byKey[key] }

// KeyOf exposes the controller's key factory.
func (c *Controller[T]) KeyOf(item T) Key { return c.keyOf(item) }

// Subscribe attaches fn to the structural event stream and returns a
// cancel function.
func (c *Controller[T]) Subscribe(fn func(Event[T])) (cancel func()) {
	return c.events.Subscribe(fn)
}

// guard validates an operation target. It returns nil exactly when n is a
// live non-root node owned by this controller.
func (c *Controller[T]) guard(n *Node[T]) error {
	if c.disposed {
		return ErrControllerDisposed
	}
	if n == nil || n.disposed {
		return ErrNodeDisposed
	}
	for cur := n; ; cur = cur.parent {
		if cur == c.root {
			if n == c.root {
				// Toggling the root is disallowed; it is implicitly
				// always expanded.
				return ErrUnknownNode
			}
			return nil
		}
		if cur.parent == nil {
			return ErrUnknownNode
		}
	}
}

// ExpandNode reveals n's children. A no-op (without an event) when n is a
// leaf or already expanded. When n is itself hidden inside a collapsed
// branch only the flag flips; the projection is untouched and no event is
// emitted, because no visible rows changed.
func (c *Controller[T]) ExpandNode(n *Node[T]) error {
	if err := c.guard(n); err != nil {
		return err
	}
	if n.IsLeaf() || n.expanded {
		return nil
	}
	c.flat.ensure()
	n.expanded = true
	if n.viewIndex < 0 {
		return nil
	}
	inserted := c.flat.spliceIn(n)
	c.events.Emit(NodeExpandedEvent[T]{Node: n, Index: n.viewIndex, Inserted: inserted})
	return nil
}

// CollapseNode hides n's descendants. A no-op (without an event) when n is
// a leaf or already collapsed. The removal set is computed over the
// pre-collapse tree, so the event and the splice always agree.
func (c *Controller[T]) CollapseNode(n *Node[T]) error {
	if err := c.guard(n); err != nil {
		return err
	}
	if n.IsLeaf() || !n.expanded {
		return nil
	}
	c.flat.ensure()
	if n.viewIndex < 0 {
		n.expanded = false
		return nil
	}
	removed := n.visibleDescendants()
	n.expanded = false
	c.flat.spliceOut(n, len(removed))
	c.events.Emit(NodeCollapsedEvent[T]{Node: n, Removed: removed})
	return nil
}

// ExpandSubtree expands n and every descendant, top-down, so each ancestor
// is visible before its descendants are processed. One event per node that
// actually toggles.
func (c *Controller[T]) ExpandSubtree(n *Node[T]) error {
	if err := c.guard(n); err != nil {
		return err
	}
	return c.expandSubtree(n)
}

func (c *Controller[T]) expandSubtree(n *Node[T]) error {
	if err := c.ExpandNode(n); err != nil {
		return err
	}
	for _, child := range n.children {
		if !child.IsLeaf() {
			if err := c.expandSubtree(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// CollapseSubtree collapses n and every expanded descendant. The node set
// is gathered over the pre-collapse tree; n collapses first, emitting one
// event carrying the full removable range, and the descendants then flip
// silently since they are already hidden.
func (c *Controller[T]) CollapseSubtree(n *Node[T]) error {
	if err := c.guard(n); err != nil {
		return err
	}
	var targets []*Node[T]
	n.walk(func(m *Node[T]) {
		if !m.IsLeaf() && m.expanded {
			targets = append(targets, m)
		}
	})
	for _, m := range targets {
		if err := c.CollapseNode(m); err != nil {
			return err
		}
	}
	return nil
}

// ExpandAll expands every node in the tree.
func (c *Controller[T]) ExpandAll() error {
	if c.disposed {
		return ErrControllerDisposed
	}
	for _, child := range c.root.children {
		if !child.IsLeaf() {
			if err := c.expandSubtree(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// CollapseAll collapses every node in the tree, leaving only top-level
// rows in the projection.
func (c *Controller[T]) CollapseAll() error {
	if c.disposed {
		return ErrControllerDisposed
	}
	for _, child := range c.root.children {
		if !child.IsLeaf() {
			if err := c.CollapseSubtree(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExpansionSnapshot captures the current expansion flags keyed by node
// key. Leaves are omitted. Use with ApplyExpansionSnapshot to carry state
// across Rebuild.
func (c *Controller[T]) ExpansionSnapshot() map[Key]bool {
	snap := make(map[Key]bool)
	c.root.walk(func(n *Node[T]) {
		if n != c.root && !n.IsLeaf() {
			snap[n.key] = n.expanded
		}
	})
	return snap
}

// ApplyExpansionSnapshot sets expansion flags from a snapshot and rebuilds
// the projection in one pass. Keys not present in the tree are ignored;
// they are stale entries from before a data change.
func (c *Controller[T]) ApplyExpansionSnapshot(snap map[Key]bool) error {
	if c.disposed {
		return ErrControllerDisposed
	}
	for key, expanded := range snap {
		if n, ok := c.byKey[key]; ok && !n.IsLeaf() {
			n.expanded = expanded
		}
	}
	c.flat.rebuild()
	return nil
}

// Rebuild re-materializes the tree from the delegate, preserving expansion
// state for nodes whose keys survive the data change. Old nodes are
// disposed when automatic disposal is enabled. The view layer must
// re-query the whole projection afterwards; no structural events are
// emitted for a wholesale rebuild.
func (c *Controller[T]) Rebuild() error {
	if c.disposed {
		return ErrControllerDisposed
	}
	snap := c.ExpansionSnapshot()
	oldRoot := c.root
	c.build()
	for key, expanded := range snap {
		if n, ok := c.byKey[key]; ok && !n.IsLeaf() {
			n.expanded = expanded
		}
	}
	c.flat.rebuild()
	if c.disposeNodes {
		disposeTree(oldRoot)
	}
	return nil
}

// ReplaceDelegate swaps the data source and rebuilds the tree from it,
// preserving expansion state for surviving keys.
func (c *Controller[T]) ReplaceDelegate(d Delegate[T]) error {
	if c.disposed {
		return ErrControllerDisposed
	}
	if d == nil {
		return errors.New("tree: nil delegate")
	}
	c.delegate = d
	return c.Rebuild()
}

// Dispose tears the controller down: the dispatcher first, then, when
// automatic node disposal is enabled, every node in the tree (visible or
// not) followed by the root. Disposing twice returns
// ErrControllerDisposed.
func (c *Controller[T]) Dispose() error {
	if c.disposed {
		return ErrControllerDisposed
	}
	c.disposed = true
	c.events.Dispose()
	if !c.disposeNodes {
		c.logger.Warn("tree controller disposed without node disposal; node lifetimes are now the caller's responsibility")
		return nil
	}
	disposeTree(c.root)
	return nil
}

// disposeTree disposes every node under root, children before parents.
// Already-disposed nodes are skipped rather than treated as errors: the
// caller may have disposed individual nodes ahead of the controller.
func disposeTree[T any](root *Node[T]) {
	for _, child := range root.children {
		disposeTree(child)
	}
	if !root.disposed {
		_ = root.Dispose()
	}
}
