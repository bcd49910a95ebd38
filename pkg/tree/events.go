package tree

// Event is a structural change to the flat projection. Exactly two kinds
// exist: NodeExpandedEvent and NodeCollapsedEvent. Events are immutable
// records; subscribers must not retain or mutate the node slices beyond
// the delivery call unless they copy them.
type Event[T any] interface {
	eventNode() *Node[T]
}

// NodeExpandedEvent reports that Node was expanded and that Inserted rows
// entered the projection directly after it, starting at Index+1.
type NodeExpandedEvent[T any] struct {
	Node     *Node[T]
	Index    int        // Node's position in the projection at emission time
	Inserted []*Node[T] // newly visible descendants, in projection order
}

func (e NodeExpandedEvent[T]) eventNode() *Node[T] { return e.Node }

// NodeCollapsedEvent reports that Node was collapsed and that Removed rows
// left the projection. Removed holds the previously visible descendants in
// their old projection order, filtered to removable nodes; descendants
// already hidden inside collapsed branches are not reported.
type NodeCollapsedEvent[T any] struct {
	Node    *Node[T]
	Removed []*Node[T]
}

func (e NodeCollapsedEvent[T]) eventNode() *Node[T] { return e.Node }

// Dispatcher is a synchronous, single-goroutine publish/subscribe channel
// for structural events. Emit delivers to all current subscribers in
// subscription order before returning; there is no batching and no
// reordering. After Dispose, Emit is a no-op and no subscriber receives
// further events.
type Dispatcher[T any] struct {
	subs     []subscription[T]
	nextID   int
	disposed bool
}

type subscription[T any] struct {
	id int
	fn func(Event[T])
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{}
}

// Subscribe registers fn and returns a cancel function that detaches it.
// Cancel is safe to call more than once. Subscribing to a disposed
// dispatcher returns a no-op cancel and fn never fires.
func (d *Dispatcher[T]) Subscribe(fn func(Event[T])) (cancel func()) {
	if d.disposed || fn == nil {
		return func() {}
	}
	id := d.nextID
	d.nextID++
	d.subs = append(d.subs, subscription[T]{id: id, fn: fn})
	return func() {
		for i, sub := range d.subs {
			if sub.id == id {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers ev synchronously to every subscriber in subscription
// order.
func (d *Dispatcher[T]) Emit(ev Event[T]) {
	if d.disposed {
		return
	}
	// Snapshot so a subscriber unsubscribing mid-delivery cannot skew the
	// iteration. Subscribers added during delivery see the next event.
	subs := make([]subscription[T], len(d.subs))
	copy(subs, d.subs)
	for _, sub := range subs {
		sub.fn(ev)
	}
}

// Dispose detaches all subscribers and makes subsequent Emit calls no-ops.
func (d *Dispatcher[T]) Dispose() {
	d.disposed = true
	d.subs = nil
}

// Disposed reports whether Dispose has been called.
func (d *Dispatcher[T]) Disposed() bool { return d.disposed }
