// Package gesture recognizes press-and-hold drags from raw mouse events.
package gesture

import "github.com/dori/dragboard/internal/geom"

// Phase of the recognizer
type Phase int

const (
	Idle Phase = iota
	// Pressed: button down, waiting for the hold to elapse
	Pressed
	// Dragging: hold elapsed, reporting deltas
	Dragging
)

// Kind classifies what a mouse event meant to the recognizer
type Kind int

const (
	None Kind = iota
	// Tap is a press released before the hold elapsed
	Tap
	// Abandon means the pointer moved past the slop before the hold
	// elapsed; the press is no longer a drag candidate
	Abandon
	DragStart
	Drag
	DragEnd
	DragCancel
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Tap:
		return "tap"
	case Abandon:
		return "abandon"
	case DragStart:
		return "drag-start"
	case Drag:
		return "drag"
	case DragEnd:
		return "drag-end"
	case DragCancel:
		return "drag-cancel"
	default:
		return "unknown"
	}
}

// Event is the recognizer's interpretation of one input
type Event struct {
	Kind Kind
	// Point is where the gesture began for Tap and DragStart, otherwise
	// the current pointer position
	Point geom.Point
	// Delta is the movement since the previous event, set for Drag
	Delta geom.Point
}

// LongPress tracks one pointer. Press arms it and returns a sequence
// number; the host schedules a timer and calls Hold with that number when
// it fires. Timers from earlier presses carry stale numbers and are ignored.
type LongPress struct {
	// Slop is how far, in cells on either axis, the pointer may wander
	// before the hold elapses without abandoning the press
	Slop int

	phase  Phase
	seq    uint64
	origin geom.Point
	last   geom.Point
}

// NewLongPress creates an idle recognizer
func NewLongPress(slop int) *LongPress {
	return &LongPress{Slop: slop}
}

// Phase returns the current phase
func (r *LongPress) Phase() Phase {
	return r.phase
}

// Origin returns where the current press began
func (r *LongPress) Origin() geom.Point {
	return r.origin
}

// Press starts a new press at p, replacing any press or drag in progress,
// and returns the sequence number its hold timer must carry.
func (r *LongPress) Press(p geom.Point) uint64 {
	r.seq++
	r.phase = Pressed
	r.origin = p
	r.last = p
	return r.seq
}

// Hold reports the hold timer for seq elapsing. It starts the drag when
// that press is still down.
func (r *LongPress) Hold(seq uint64) Event {
	if r.phase != Pressed || seq != r.seq {
		return Event{}
	}
	r.phase = Dragging
	// the first delta counts from the origin, movement within the slop
	// included
	r.last = r.origin
	return Event{Kind: DragStart, Point: r.origin}
}

// Motion reports the pointer moving to p with the button held
func (r *LongPress) Motion(p geom.Point) Event {
	switch r.phase {
	case Pressed:
		d := p.Sub(r.origin)
		if abs(d.X) > r.Slop || abs(d.Y) > r.Slop {
			r.phase = Idle
			return Event{Kind: Abandon, Point: p}
		}
		r.last = p
		return Event{}
	case Dragging:
		delta := p.Sub(r.last)
		r.last = p
		if delta.IsZero() {
			return Event{}
		}
		return Event{Kind: Drag, Point: p, Delta: delta}
	}
	return Event{}
}

// Release reports the button going up at p
func (r *LongPress) Release(p geom.Point) Event {
	phase := r.phase
	r.phase = Idle
	switch phase {
	case Pressed:
		return Event{Kind: Tap, Point: r.origin}
	case Dragging:
		return Event{Kind: DragEnd, Point: p}
	}
	return Event{}
}

// Cancel aborts the gesture, e.g. when the host loses focus
func (r *LongPress) Cancel() Event {
	phase := r.phase
	r.phase = Idle
	if phase == Dragging {
		return Event{Kind: DragCancel, Point: r.last}
	}
	return Event{}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
