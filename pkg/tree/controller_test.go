package tree

import (
	"errors"
	"testing"
)

// projection returns the items currently visible, in order.
func projection(c *Controller[string]) []string {
	out := make([]string, 0, c.TreeSize())
	for i := 0; i < c.TreeSize(); i++ {
		n, err := c.NodeAt(i)
		if err != nil {
			break
		}
		out = append(out, n.Item())
	}
	return out
}

func sameItems(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// TestExampleScenario walks the canonical fixture: A expanded with A1 and
// A2, B collapsed with B1.
func TestExampleScenario(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	if got := projection(c); !sameItems(got, "A", "A1", "A2", "B") {
		t.Fatalf("initial projection = %v, want [A A1 A2 B]", got)
	}

	var events []Event[string]
	c.Subscribe(func(ev Event[string]) { events = append(events, ev) })

	if err := c.ExpandNode(c.NodeByKey("B")); err != nil {
		t.Fatalf("expand B: %v", err)
	}
	if got := projection(c); !sameItems(got, "A", "A1", "A2", "B", "B1") {
		t.Fatalf("after expand B projection = %v, want [A A1 A2 B B1]", got)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	exp, ok := events[0].(NodeExpandedEvent[string])
	if !ok {
		t.Fatalf("expected NodeExpandedEvent, got %T", events[0])
	}
	if exp.Node.Item() != "B" || len(exp.Inserted) != 1 || exp.Inserted[0].Item() != "B1" {
		t.Errorf("expand event: node=%v inserted=%d", exp.Node.Item(), len(exp.Inserted))
	}

	if err := c.CollapseNode(c.NodeByKey("A")); err != nil {
		t.Fatalf("collapse A: %v", err)
	}
	if got := projection(c); !sameItems(got, "A", "B", "B1") {
		t.Fatalf("after collapse A projection = %v, want [A B B1]", got)
	}
	col, ok := events[1].(NodeCollapsedEvent[string])
	if !ok {
		t.Fatalf("expected NodeCollapsedEvent, got %T", events[1])
	}
	if len(col.Removed) != 2 || col.Removed[0].Item() != "A1" || col.Removed[1].Item() != "A2" {
		t.Errorf("collapse event removed wrong nodes")
	}
}

// TestToggleIdempotence verifies the second expand/collapse is a silent
// no-op.
func TestToggleIdempotence(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	events := 0
	c.Subscribe(func(Event[string]) { events++ })

	b := c.NodeByKey("B")
	_ = c.ExpandNode(b)
	_ = c.ExpandNode(b)
	if events != 1 {
		t.Errorf("double expand emitted %d events, want 1", events)
	}
	size := c.TreeSize()
	_ = c.ExpandNode(b)
	if c.TreeSize() != size {
		t.Error("repeated expand changed the projection")
	}

	_ = c.CollapseNode(b)
	_ = c.CollapseNode(b)
	if events != 2 {
		t.Errorf("double collapse emitted %d events, want 2", events)
	}
}

// TestLeafToggleIsNoOp verifies leaves emit nothing and never expand.
func TestLeafToggleIsNoOp(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	events := 0
	c.Subscribe(func(Event[string]) { events++ })

	a1 := c.NodeByKey("A1")
	if err := c.ExpandNode(a1); err != nil {
		t.Errorf("expand leaf: %v", err)
	}
	if err := c.CollapseNode(a1); err != nil {
		t.Errorf("collapse leaf: %v", err)
	}
	if events != 0 {
		t.Errorf("leaf toggles emitted %d events, want 0", events)
	}
	if a1.IsExpanded() {
		t.Error("leaf must not end up expanded")
	}
}

// TestExpandCollapseRoundTrip verifies collapse restores the
// pre-expansion projection exactly.
func TestExpandCollapseRoundTrip(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	before := projection(c)
	b := c.NodeByKey("B")
	_ = c.ExpandNode(b)
	_ = c.CollapseNode(b)
	after := projection(c)

	if !sameItems(after, before...) {
		t.Errorf("round trip: before=%v after=%v", before, after)
	}
}

// TestExpandSubtreeEventAccuracy checks the union of inserted nodes over
// all events equals the subtree's descendants, with no duplicates.
func TestExpandSubtreeEventAccuracy(t *testing.T) {
	d := &testDelegate{
		roots: []string{"R"},
		children: map[string][]string{
			"R":  {"R1", "R2"},
			"R1": {"R1a", "R1b"},
			"R2": {"R2a"},
		},
	}
	c := NewController[string](d,
		WithInitialExpansion[string](func(string, int) bool { return false }))
	defer c.Dispose()

	inserted := make(map[string]int)
	c.Subscribe(func(ev Event[string]) {
		if exp, ok := ev.(NodeExpandedEvent[string]); ok {
			for _, n := range exp.Inserted {
				inserted[n.Item()]++
			}
		}
	})

	if err := c.ExpandSubtree(c.NodeByKey("R")); err != nil {
		t.Fatalf("expand subtree: %v", err)
	}

	want := []string{"R1", "R2", "R1a", "R1b", "R2a"}
	if len(inserted) != len(want) {
		t.Fatalf("inserted set = %v, want %v", inserted, want)
	}
	for _, item := range want {
		if inserted[item] != 1 {
			t.Errorf("item %s inserted %d times, want exactly once", item, inserted[item])
		}
	}
	if got := projection(c); !sameItems(got, "R", "R1", "R1a", "R1b", "R2", "R2a") {
		t.Errorf("projection = %v", got)
	}
}

// TestCollapseSubtreeSingleEvent verifies a deep collapse removes the
// whole removable range in one event, with descendant flags flipping
// silently afterwards.
func TestCollapseSubtreeSingleEvent(t *testing.T) {
	d := &testDelegate{
		roots: []string{"R"},
		children: map[string][]string{
			"R":  {"R1"},
			"R1": {"R1a"},
		},
	}
	c := NewController[string](d,
		WithInitialExpansion[string](func(string, int) bool { return true }))
	defer c.Dispose()

	var removed [][]string
	c.Subscribe(func(ev Event[string]) {
		if col, ok := ev.(NodeCollapsedEvent[string]); ok {
			items := make([]string, len(col.Removed))
			for i, n := range col.Removed {
				items[i] = n.Item()
			}
			removed = append(removed, items)
		}
	})

	if err := c.CollapseSubtree(c.NodeByKey("R")); err != nil {
		t.Fatalf("collapse subtree: %v", err)
	}
	if len(removed) != 1 {
		t.Fatalf("got %d collapse events, want 1", len(removed))
	}
	if !sameItems(removed[0], "R1", "R1a") {
		t.Errorf("removed = %v, want [R1 R1a]", removed[0])
	}
	if c.NodeByKey("R1").IsExpanded() {
		t.Error("hidden descendant should have collapsed silently")
	}
}

// TestSubscriberSeesPostMutationState: during event delivery the
// projection already reflects the mutation.
func TestSubscriberSeesPostMutationState(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	checked := false
	c.Subscribe(func(ev Event[string]) {
		checked = true
		if c.TreeSize() != 5 {
			t.Errorf("subscriber saw treeSize %d, want post-mutation 5", c.TreeSize())
		}
		n, err := c.NodeAt(4)
		if err != nil || n.Item() != "B1" {
			t.Errorf("subscriber saw nodeAt(4) = %v, %v", n, err)
		}
	})
	_ = c.ExpandNode(c.NodeByKey("B"))
	if !checked {
		t.Fatal("subscriber never ran")
	}
}

// TestExpandHiddenNodeFlipsSilently: expanding a node buried in a
// collapsed branch changes no visible rows and emits nothing.
func TestExpandHiddenNodeFlipsSilently(t *testing.T) {
	d := &testDelegate{
		roots: []string{"R"},
		children: map[string][]string{
			"R":  {"R1"},
			"R1": {"R1a"},
		},
	}
	c := NewController[string](d,
		WithInitialExpansion[string](func(string, int) bool { return false }))
	defer c.Dispose()

	events := 0
	c.Subscribe(func(Event[string]) { events++ })

	r1 := c.NodeByKey("R1")
	if err := c.ExpandNode(r1); err != nil {
		t.Fatalf("expand hidden: %v", err)
	}
	if events != 0 {
		t.Errorf("hidden expand emitted %d events, want 0", events)
	}
	if !r1.IsExpanded() {
		t.Error("flag should have flipped")
	}
	if got := projection(c); !sameItems(got, "R") {
		t.Errorf("projection = %v, want [R]", got)
	}

	// Revealing the branch now shows the pre-expanded descendant too.
	_ = c.ExpandNode(c.NodeByKey("R"))
	if got := projection(c); !sameItems(got, "R", "R1", "R1a") {
		t.Errorf("projection after reveal = %v, want [R R1 R1a]", got)
	}
}

func TestExpandAllCollapseAll(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	if err := c.ExpandAll(); err != nil {
		t.Fatalf("expand all: %v", err)
	}
	if got := projection(c); !sameItems(got, "A", "A1", "A2", "B", "B1") {
		t.Errorf("after expand all: %v", got)
	}

	if err := c.CollapseAll(); err != nil {
		t.Fatalf("collapse all: %v", err)
	}
	if got := projection(c); !sameItems(got, "A", "B") {
		t.Errorf("after collapse all: %v", got)
	}
}

func TestUnknownNodeRejected(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	other := exampleController()
	defer other.Dispose()

	if err := c.ExpandNode(other.NodeByKey("B")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("foreign node: err = %v, want ErrUnknownNode", err)
	}
	if err := c.ExpandNode(c.Root()); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("root toggle: err = %v, want ErrUnknownNode", err)
	}
}

func TestNodeAtOutOfRange(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	if _, err := c.NodeAt(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("NodeAt(-1) err = %v, want ErrOutOfRange", err)
	}
	if _, err := c.NodeAt(c.TreeSize()); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("NodeAt(size) err = %v, want ErrOutOfRange", err)
	}
}

// TestKeyStability: same item, same key, across calls and across rebuild.
func TestKeyStability(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	k1 := c.KeyOf("A1")
	k2 := c.KeyOf("A1")
	if k1 != k2 {
		t.Errorf("key factory unstable: %q vs %q", k1, k2)
	}

	before := c.NodeByKey("A1").Key()
	if err := c.Rebuild(); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	after := c.NodeByKey("A1").Key()
	if before != after {
		t.Errorf("key changed across rebuild: %q vs %q", before, after)
	}
}

// TestRebuildPreservesExpansion: expansion flags survive a rebuild for
// keys that still exist.
func TestRebuildPreservesExpansion(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	_ = c.ExpandNode(c.NodeByKey("B"))
	if err := c.Rebuild(); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if got := projection(c); !sameItems(got, "A", "A1", "A2", "B", "B1") {
		t.Errorf("projection after rebuild = %v", got)
	}
}

func TestExpansionSnapshotRoundTrip(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	snap := c.ExpansionSnapshot()
	_ = c.CollapseAll()
	if err := c.ApplyExpansionSnapshot(snap); err != nil {
		t.Fatalf("apply snapshot: %v", err)
	}
	if got := projection(c); !sameItems(got, "A", "A1", "A2", "B") {
		t.Errorf("projection after snapshot restore = %v", got)
	}
}

// TestReplaceDelegate swaps the data source wholesale.
func TestReplaceDelegate(t *testing.T) {
	c := exampleController()
	defer c.Dispose()

	fresh := &testDelegate{
		roots: []string{"A", "C"},
		children: map[string][]string{
			"A": {"A1"},
		},
	}
	if err := c.ReplaceDelegate(fresh); err != nil {
		t.Fatalf("replace delegate: %v", err)
	}
	// A stays expanded (key survived); C is brand new.
	if got := projection(c); !sameItems(got, "A", "A1", "C") {
		t.Errorf("projection after replace = %v, want [A A1 C]", got)
	}
	if err := c.ReplaceDelegate(nil); err == nil {
		t.Error("nil delegate should be rejected")
	}
}

// TestDisposeAutomatic: every node reachable from root is disposed
// exactly once, and further operations fail.
func TestDisposeAutomatic(t *testing.T) {
	c := exampleController()
	nodes := []*Node[string]{
		c.NodeByKey("A"), c.NodeByKey("A1"), c.NodeByKey("A2"),
		c.NodeByKey("B"), c.NodeByKey("B1"),
	}

	if err := c.Dispose(); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	for _, n := range nodes {
		if !n.IsDisposed() {
			t.Errorf("node %s not disposed", n.Item())
		}
	}
	if !c.Root().IsDisposed() {
		t.Error("root not disposed")
	}
	if err := c.Dispose(); !errors.Is(err, ErrControllerDisposed) {
		t.Errorf("second dispose = %v, want ErrControllerDisposed", err)
	}
	if err := c.ExpandNode(nodes[3]); !errors.Is(err, ErrControllerDisposed) {
		t.Errorf("op after dispose = %v, want ErrControllerDisposed", err)
	}
}

// TestDisposeManual: with WithoutNodeDisposal the controller leaves the
// nodes alone.
func TestDisposeManual(t *testing.T) {
	c := NewController[string](exampleDelegate(), WithoutNodeDisposal[string]())
	a := c.NodeByKey("A")

	if err := c.Dispose(); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if a.IsDisposed() {
		t.Error("manual mode must not dispose nodes")
	}
}

// TestOperateOnDisposedNode: a node disposed individually is refused.
func TestOperateOnDisposedNode(t *testing.T) {
	c := NewController[string](exampleDelegate(), WithoutNodeDisposal[string]())
	defer c.Dispose()

	b := c.NodeByKey("B")
	if err := b.Dispose(); err != nil {
		t.Fatalf("dispose node: %v", err)
	}
	if err := c.ExpandNode(b); !errors.Is(err, ErrNodeDisposed) {
		t.Errorf("expand disposed node = %v, want ErrNodeDisposed", err)
	}
}
