package tree

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller misuse. Structural operations on well-formed
// input never fail; these only surface contract violations.
var (
	// ErrNodeDisposed is returned when operating on a node that was
	// already disposed, including a second Dispose call.
	ErrNodeDisposed = errors.New("tree: node already disposed")

	// ErrControllerDisposed is returned when operating on a controller
	// after Dispose.
	ErrControllerDisposed = errors.New("tree: controller already disposed")

	// ErrUnknownNode is returned when a node does not belong to the
	// controller's tree.
	ErrUnknownNode = errors.New("tree: node does not belong to this controller")

	// ErrOutOfRange is returned by NodeAt for an index outside
	// [0, TreeSize).
	ErrOutOfRange = errors.New("tree: index out of range")
)

// ConsistencyError reports drift between the incrementally maintained
// projection and a full rescan. It indicates a bug in the engine, never a
// recoverable runtime condition.
type ConsistencyError struct {
	Want int // size of the projection per full rescan
	Got  int // size of the cached projection
	Pos  int // first diverging index, -1 if only the sizes differ
}

func (e *ConsistencyError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("tree: projection drift at index %d (rescan size %d, cached size %d)", e.Pos, e.Want, e.Got)
	}
	return fmt.Sprintf("tree: projection drift (rescan size %d, cached size %d)", e.Want, e.Got)
}
