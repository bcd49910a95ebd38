// flatten.go - Incremental projection of the tree onto a flat row sequence
package tree

// flattener owns the visible-sequence cache: a contiguous slice of the
// nodes currently eligible for display, in pre-order depth-first order
// with collapsed subtrees pruned. The slice is spliced incrementally on
// expand/collapse, so a toggle of a subtree with k visible nodes costs
// O(k) plus index renumbering from the splice point; the tree is never
// rescanned wholesale outside of rebuild.
//
// The cache is built lazily on first use and is exclusively owned by the
// flattener; all other components read it through the controller's query
// surface.
type flattener[T any] struct {
	root  *Node[T]
	flat  []*Node[T]
	built bool
}

func (f *flattener[T]) ensure() {
	if !f.built {
		f.rebuild()
	}
}

// rebuild recomputes the whole projection from the tree. Used on first
// access and when the underlying delegate data changed wholesale.
func (f *flattener[T]) rebuild() {
	for _, n := range f.flat {
		n.viewIndex = -1
	}
	f.flat = f.flat[:0]
	if f.root != nil {
		for _, n := range f.root.visibleDescendants() {
			n.viewIndex = len(f.flat)
			f.flat = append(f.flat, n)
		}
	}
	f.built = true
}

func (f *flattener[T]) size() int {
	f.ensure()
	return len(f.flat)
}

func (f *flattener[T]) nodeAt(index int) *Node[T] {
	f.ensure()
	if index < 0 || index >= len(f.flat) {
		return nil
	}
	return f.flat[index]
}

func (f *flattener[T]) indexOf(n *Node[T]) int {
	f.ensure()
	return n.viewIndex
}

// spliceIn inserts n's now-visible descendants into the projection
// directly after n and returns them in projection order. n must already
// be expanded and present in the projection.
func (f *flattener[T]) spliceIn(n *Node[T]) []*Node[T] {
	f.ensure()
	inserted := n.visibleDescendants()
	if len(inserted) == 0 {
		return nil
	}
	at := n.viewIndex + 1
	f.flat = append(f.flat, inserted...)          // grow
	copy(f.flat[at+len(inserted):], f.flat[at:])  // shift tail right
	copy(f.flat[at:], inserted)                   // place the new rows
	f.renumber(at)
	return inserted
}

// spliceOut removes k rows starting directly after n. The caller computed
// the removal set over the pre-collapse tree; here only the contiguous
// range is excised.
func (f *flattener[T]) spliceOut(n *Node[T], k int) {
	f.ensure()
	if k <= 0 {
		return
	}
	at := n.viewIndex + 1
	for _, m := range f.flat[at : at+k] {
		m.viewIndex = -1
	}
	f.flat = append(f.flat[:at], f.flat[at+k:]...)
	f.renumber(at)
}

// renumber refreshes cached view indices from position at to the end.
func (f *flattener[T]) renumber(at int) {
	for i := at; i < len(f.flat); i++ {
		f.flat[i].viewIndex = i
	}
}

// reconcile compares the cached projection against a full rescan and
// returns a ConsistencyError on drift. Drift means an engine bug; this
// exists for tests and debug assertions, not for recovery.
func (f *flattener[T]) reconcile() error {
	f.ensure()
	want := f.root.visibleDescendants()
	if len(want) != len(f.flat) {
		return &ConsistencyError{Want: len(want), Got: len(f.flat), Pos: -1}
	}
	for i := range want {
		if want[i] != f.flat[i] || want[i].viewIndex != i {
			return &ConsistencyError{Want: len(want), Got: len(f.flat), Pos: i}
		}
	}
	return nil
}
