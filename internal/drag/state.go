// Package drag implements the drag state machine behind reorderable lists:
// it accumulates pointer deltas for a lifted item, estimates which index the
// item is over and asks the owner of the list to reorder.
package drag

import "github.com/dori/dragboard/internal/geom"

// State is the transient state of one drag cycle. The zero value is not
// idle; use emptyState so Index is -1.
type State[T any] struct {
	Active  bool
	Item    T
	HasItem bool

	// Index is the dragged item's current logical index, -1 when idle
	Index int

	// Size of the item when the drag began
	Size geom.Size

	// Anchor is the item's position relative to the list viewport when the
	// drag began
	Anchor geom.Point

	// Offset is the sum of pointer deltas since the drag began
	Offset geom.Point

	// Touch is where inside the item the drag began
	Touch geom.Point
}

func emptyState[T any]() State[T] {
	return State[T]{Index: -1}
}

// Position is the current drag position: the anchor moved by every delta
// received so far.
func (s State[T]) Position() geom.Point {
	return s.Anchor.Add(s.Offset)
}

// Pointer is where the pointer is now, relative to the list viewport
func (s State[T]) Pointer() geom.Point {
	return s.Anchor.Add(s.Touch).Add(s.Offset)
}

// OverlayOrigin is the top-left corner of the floating copy of the item,
// placed so the pointer keeps its grip on the spot where the drag began.
func (s State[T]) OverlayOrigin() geom.Point {
	return s.Pointer().Sub(s.Touch)
}

// Lifted reports whether index is the row currently being dragged
func (s State[T]) Lifted(index int) bool {
	return s.Active && s.Index == index
}
