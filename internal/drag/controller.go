package drag

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/dori/dragboard/internal/geom"
)

// StartPolicy decides what Start does while another drag is active
type StartPolicy int

const (
	// Restart abandons the active drag, without a drop callback, and
	// starts the new one
	Restart StartPolicy = iota
	// IgnoreWhileActive keeps the active drag and drops the new start
	IgnoreWhileActive
)

// String returns the config name of the policy
func (p StartPolicy) String() string {
	switch p {
	case Restart:
		return "restart"
	case IgnoreWhileActive:
		return "ignore"
	default:
		return "unknown"
	}
}

// ParseStartPolicy parses a config name into a StartPolicy
func ParseStartPolicy(s string) (StartPolicy, bool) {
	switch s {
	case "", "restart":
		return Restart, true
	case "ignore":
		return IgnoreWhileActive, true
	}
	return Restart, false
}

// Controller turns pointer gestures over a list into reorder requests. It
// keeps a borrowed snapshot of the list only to bound its estimates; the
// list itself belongs to the caller, who applies every onMove.
//
// A Controller is driven from a single event loop and is not safe for
// concurrent use.
type Controller[T any] struct {
	items         []T
	onMove        func(from, to int)
	onDropOutside func(item T, pos geom.Point)

	state     State[T]
	estimator Estimator
	policy    StartPolicy
	logger    *log.Logger

	observers []observer[T]
	nextID    int
}

type observer[T any] struct {
	id int
	fn func(State[T])
}

// Option configures a Controller
type Option[T any] func(*Controller[T])

// WithEstimator replaces the default UniformEstimator
func WithEstimator[T any](e Estimator) Option[T] {
	return func(c *Controller[T]) {
		if e != nil {
			c.estimator = e
		}
	}
}

// WithStartPolicy sets how overlapping starts are handled
func WithStartPolicy[T any](p StartPolicy) Option[T] {
	return func(c *Controller[T]) {
		c.policy = p
	}
}

// WithLogger sets the logger used for drag lifecycle debug output
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(c *Controller[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates an idle controller over items. Either callback
// may be nil.
func NewController[T any](items []T, onMove func(from, to int), onDropOutside func(item T, pos geom.Point), opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		items:         items,
		onMove:        onMove,
		onDropOutside: onDropOutside,
		state:         emptyState[T](),
		estimator:     UniformEstimator{},
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current drag state
func (c *Controller[T]) State() State[T] {
	return c.state
}

// Active reports whether a drag is in progress
func (c *Controller[T]) Active() bool {
	return c.state.Active
}

// Len is the length of the snapshot the controller bounds its estimates to
func (c *Controller[T]) Len() int {
	return len(c.items)
}

// Subscribe registers fn to be called after every state change. The
// returned function removes the subscription.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer[T]{id: id, fn: fn})
	return func() {
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// Start lifts item at index. anchor is the item's position relative to the
// viewport, touch the point inside the item where the gesture began.
func (c *Controller[T]) Start(anchor, touch geom.Point, index int, item T, size geom.Size) {
	if c.state.Active {
		if c.policy == IgnoreWhileActive {
			c.logger.Debug("drag start ignored", "index", index, "active", c.state.Index)
			return
		}
		c.logger.Debug("drag restarted", "abandoned", c.state.Index, "index", index)
	}

	c.state = State[T]{
		Active:  true,
		Item:    item,
		HasItem: true,
		Index:   index,
		Size:    size,
		Anchor:  anchor,
		Touch:   touch,
	}
	c.logger.Debug("drag start", "index", index, "anchor", anchor, "touch", touch, "size", size.Height)
	c.notify()
}

// Move accumulates delta and, when the estimated index under the drag
// position changes, asks the list owner to move the item there. It calls
// onMove at most once per call and never with equal indices.
func (c *Controller[T]) Move(delta geom.Point, vp Viewport) {
	if !c.state.Active {
		return
	}
	c.state.Offset = c.state.Offset.Add(delta)

	current := c.state.Index
	var target int
	if se, ok := c.estimator.(SlotEstimator); ok {
		target = se.EstimateSlot(current, c.state.Position(), c.state.Size, len(c.items), vp)
	} else {
		target = c.estimator.EstimateIndex(c.state.Position(), c.state.Size, len(c.items), vp)
	}
	if target >= 0 && target < len(c.items) && target != current {
		if c.onMove != nil {
			c.onMove(current, target)
		}
		c.state.Index = target
		c.logger.Debug("drag reorder", "from", current, "to", target)
	}
	c.notify()
}

// End finishes the drag, reporting the item and its final position to
// onDropOutside, and resets. Calling End while idle does nothing.
func (c *Controller[T]) End() {
	if !c.state.Active && !c.state.HasItem {
		return
	}
	final := c.state
	c.state = emptyState[T]()

	if final.Active && final.HasItem {
		c.logger.Debug("drag end", "index", final.Index, "position", final.Position())
		if c.onDropOutside != nil {
			c.onDropOutside(final.Item, final.Position())
		}
	}
	c.notify()
}

// Cancel ends the drag through the same path as End, drop callback
// included.
func (c *Controller[T]) Cancel() {
	c.End()
}

// Sync replaces the snapshot with the caller's reordered sequence, keeping
// any drag in progress.
func (c *Controller[T]) Sync(items []T) {
	c.items = items
}

// Reset adopts a new list identity. A drag in progress is discarded without
// callbacks.
func (c *Controller[T]) Reset(items []T) {
	c.items = items
	if c.state.Active || c.state.HasItem {
		c.logger.Debug("drag discarded by list reset", "index", c.state.Index)
		c.state = emptyState[T]()
		c.notify()
	}
}

func (c *Controller[T]) notify() {
	s := c.state
	for _, o := range c.observers {
		o.fn(s)
	}
}
