package anim

import (
	"time"

	"github.com/mz2/flattree/pkg/tree"
)

// DefaultDuration is the transition length used when no WithDuration
// option is given.
const DefaultDuration = 220 * time.Millisecond

// Direction tags which way a row is transitioning.
type Direction int

const (
	// Expanding rows are entering the projection and growing in.
	Expanding Direction = iota
	// Collapsing rows are leaving the projection and shrinking out.
	Collapsing
)

func (d Direction) String() string {
	if d == Collapsing {
		return "collapsing"
	}
	return "expanding"
}

// Handle is the per-node transition state. At most one handle exists per
// node key at any time; retargeting a key replaces the in-flight handle
// instead of stacking a second one.
type Handle struct {
	key      tree.Key
	dir      Direction
	start    time.Time
	duration time.Duration
	curve    Curve
	frac     float64 // raw linear progress in [0,1], set by Advance
	released bool
}

// Key returns the node key this handle animates.
func (h *Handle) Key() tree.Key { return h.key }

// Direction returns the transition direction.
func (h *Handle) Direction() Direction { return h.dir }

// Progress returns the eased transition progress in [0,1]. Expanding rows
// grow in as progress rises; collapsing rows shrink out as it rises.
func (h *Handle) Progress() float64 { return h.curve(h.frac) }

// Done reports whether the transition has run its full duration.
func (h *Handle) Done() bool { return h.frac >= 1 }

// Released reports whether the handle has been released. A released
// handle must not be advanced or re-released.
func (h *Handle) Released() bool { return h.released }

// Coordinator owns every in-flight row transition, keyed by node key.
// Bind it to a tree.Controller and it starts transitions from structural
// events; drive it with Advance on a frame tick.
//
// For a collapse the coordinator retains the removed rows, grouped under
// the collapsed node's key, until their transitions complete. The view
// reads them through Leaving to render still-present-but-shrinking rows
// even though the projection has already excised them.
//
// Like the controller, a Coordinator is single-goroutine: Advance and the
// bound controller's operations must run in the same goroutine, and ticks
// never re-enter the controller.
type Coordinator[T any] struct {
	duration time.Duration
	curve    Curve
	now      func() time.Time

	handles  map[tree.Key]*Handle
	leaving  map[tree.Key][]*tree.Node[T] // collapsed node key -> removed rows
	unbind   func()
	disposed bool
}

type settings struct {
	duration time.Duration
	curve    Curve
	now      func() time.Time
}

// Option configures a Coordinator.
type Option func(*settings)

// WithDuration sets the transition length for all handles.
func WithDuration(d time.Duration) Option {
	return func(s *settings) { s.duration = d }
}

// WithCurve sets the easing curve for all handles.
func WithCurve(c Curve) Option {
	return func(s *settings) { s.curve = c }
}

// WithClock overrides the time source. Tests use this to advance
// transitions deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// New returns a Coordinator with no transitions in flight.
func New[T any](opts ...Option) *Coordinator[T] {
	s := settings{
		duration: DefaultDuration,
		curve:    EaseOutCubic,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Coordinator[T]{
		duration: s.duration,
		curve:    s.curve,
		now:      s.now,
		handles:  make(map[tree.Key]*Handle),
		leaving:  make(map[tree.Key][]*tree.Node[T]),
	}
}

// Bind subscribes the coordinator to the controller's structural events
// and returns a cancel function detaching it.
func (c *Coordinator[T]) Bind(ctrl *tree.Controller[T]) (cancel func()) {
	cancel = ctrl.Subscribe(func(ev tree.Event[T]) {
		switch ev := ev.(type) {
		case tree.NodeExpandedEvent[T]:
			for _, n := range ev.Inserted {
				c.Start(n.Key(), Expanding)
			}
		case tree.NodeCollapsedEvent[T]:
			if len(ev.Removed) == 0 {
				return
			}
			rows := make([]*tree.Node[T], len(ev.Removed))
			copy(rows, ev.Removed)
			c.leaving[ev.Node.Key()] = rows
			for _, n := range rows {
				c.Start(n.Key(), Collapsing)
			}
		}
	})
	c.unbind = cancel
	return cancel
}

// Start begins a transition for key. If a handle for key is already in
// flight it is cancelled and replaced; when the direction reverses, the
// replacement starts from the complementary position so the row does not
// visually jump.
func (c *Coordinator[T]) Start(key tree.Key, dir Direction) *Handle {
	if c.disposed {
		return nil
	}
	start := c.now()
	if prev, ok := c.handles[key]; ok {
		if prev.dir != dir && prev.frac < 1 {
			// Resume mid-flight from the mirrored position.
			elapsed := time.Duration((1 - prev.frac) * float64(c.duration))
			start = start.Add(-elapsed)
		}
		c.release(prev)
	}
	h := &Handle{
		key:      key,
		dir:      dir,
		start:    start,
		duration: c.duration,
		curve:    c.curve,
	}
	c.handles[key] = h
	return h
}

// Find returns the in-flight handle for key, or nil while the key is
// idle.
func (c *Coordinator[T]) Find(key tree.Key) *Handle {
	return c.handles[key]
}

// Leaving returns the rows removed by collapsing the node with the given
// key that are still mid-transition, in their old projection order. Empty
// once the group's transitions have completed and been swept.
func (c *Coordinator[T]) Leaving(key tree.Key) []*tree.Node[T] {
	return c.leaving[key]
}

// Active returns the number of transitions in flight.
func (c *Coordinator[T]) Active() int { return len(c.handles) }

// Advance moves every in-flight transition to the given instant, releases
// completed handles and sweeps leaving groups whose rows have all
// finished. It is idempotent: replaying the same instant changes nothing.
// Returns true while transitions remain in flight.
func (c *Coordinator[T]) Advance(now time.Time) bool {
	if c.disposed {
		return false
	}
	for key, h := range c.handles {
		frac := float64(now.Sub(h.start)) / float64(h.duration)
		if frac < 0 {
			frac = 0
		}
		if frac >= 1 {
			h.frac = 1
			c.release(h)
			delete(c.handles, key)
			continue
		}
		h.frac = frac
	}
	c.sweepLeaving()
	return len(c.handles) > 0
}

// sweepLeaving drops leaving groups with no remaining in-flight rows.
func (c *Coordinator[T]) sweepLeaving() {
	for key, rows := range c.leaving {
		active := false
		for _, n := range rows {
			if _, ok := c.handles[n.Key()]; ok {
				active = true
				break
			}
		}
		if !active {
			delete(c.leaving, key)
		}
	}
}

// Cancel releases the in-flight handle for key, if any. Used when a node
// leaves the tree mid-animation.
func (c *Coordinator[T]) Cancel(key tree.Key) {
	if h, ok := c.handles[key]; ok {
		c.release(h)
		delete(c.handles, key)
	}
	c.sweepLeaving()
}

// Dispose cancels every in-flight transition and detaches from the
// controller. Each handle is released exactly once; disposing twice is a
// no-op.
func (c *Coordinator[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	for key, h := range c.handles {
		c.release(h)
		delete(c.handles, key)
	}
	c.leaving = make(map[tree.Key][]*tree.Node[T])
}

// release marks a handle released, guarding against double-release.
func (c *Coordinator[T]) release(h *Handle) {
	if h.released {
		return
	}
	h.released = true
}
