package drag

import "github.com/dori/dragboard/internal/geom"

// DropTarget is a screen region that reacts to the drag state of a list
// of T. Check is meant to run on every layout pass.
type DropTarget[T any] struct {
	Bounds geom.Rect
	OnDrop func(item T)

	inBounds bool
}

// NewDropTarget creates a target over bounds
func NewDropTarget[T any](bounds geom.Rect, onDrop func(item T)) *DropTarget[T] {
	return &DropTarget[T]{Bounds: bounds, OnDrop: onDrop}
}

// Check updates whether the drag position is over the target and fires
// OnDrop when it is and no drag is active. It reports whether OnDrop ran.
//
// The handler only fires for a state that is inactive yet still carries an
// item, which the Controller never produces since End resets the state.
// Kept as is until the intended trigger (dropping while dragging) is
// confirmed.
func (t *DropTarget[T]) Check(s State[T]) bool {
	t.inBounds = t.Bounds.Contains(s.Position())
	if !t.inBounds || s.Active || !s.HasItem {
		return false
	}
	if t.OnDrop != nil {
		t.OnDrop(s.Item)
	}
	return true
}

// InBounds reports whether the last checked drag position was inside the
// target.
func (t *DropTarget[T]) InBounds() bool {
	return t.inBounds
}
