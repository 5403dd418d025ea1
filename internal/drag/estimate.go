package drag

import "github.com/dori/dragboard/internal/geom"

// Viewport describes how a scrollable list is currently scrolled
type Viewport interface {
	// FirstVisibleIndex is the index of the topmost row that is at least
	// partly visible
	FirstVisibleIndex() int
	// FirstVisibleOffset is how many cells of that row are scrolled out of
	// view above the viewport
	FirstVisibleOffset() int
}

// Row is one laid-out row: its list index and its bounds relative to the
// viewport.
type Row struct {
	Index  int
	Bounds geom.Rect
}

// MeasuredViewport is a Viewport that can also report the bounds of the
// rows it currently has laid out, top to bottom.
type MeasuredViewport interface {
	Viewport
	VisibleRows() []Row
}

// Estimator maps a drag position to the index of the row under it. A
// negative result means no estimate could be made.
type Estimator interface {
	EstimateIndex(pos geom.Point, size geom.Size, n int, vp Viewport) int
}

// SlotEstimator is an Estimator that also knows where the dragged item
// currently sits. The controller prefers EstimateSlot when it is available.
type SlotEstimator interface {
	Estimator
	EstimateSlot(current int, pos geom.Point, size geom.Size, n int, vp Viewport) int
}

// EstimatorFunc adapts a function to Estimator
type EstimatorFunc func(pos geom.Point, size geom.Size, n int, vp Viewport) int

// EstimateIndex calls f
func (f EstimatorFunc) EstimateIndex(pos geom.Point, size geom.Size, n int, vp Viewport) int {
	return f(pos, size, n, vp)
}

// UniformEstimator assumes every row is as tall as the dragged item:
//
//	floor((pos.Y + firstVisibleOffset) / size.Height) + firstVisibleIndex
//
// clamped to [0, n-1]. With rows of differing heights the estimate drifts;
// MeasuredEstimator hit-tests the laid-out rows instead.
type UniformEstimator struct{}

// EstimateIndex implements Estimator
func (UniformEstimator) EstimateIndex(pos geom.Point, size geom.Size, n int, vp Viewport) int {
	if n <= 0 || size.Height <= 0 {
		return -1
	}
	first, offset := 0, 0
	if vp != nil {
		first, offset = vp.FirstVisibleIndex(), vp.FirstVisibleOffset()
	}
	return clamp(floorDiv(pos.Y+offset, size.Height)+first, 0, n-1)
}

// MeasuredEstimator hit-tests the drag position against the rows the
// viewport has laid out. Positions above or below them, or viewports that
// cannot report rows, fall back to the uniform approximation.
//
// During a drag the controller calls EstimateSlot, which swaps the item
// with a neighbour only once the item's leading edge passes that
// neighbour's midpoint. A short row dragged past a tall one then settles
// instead of swapping back on the next motion.
type MeasuredEstimator struct{}

// EstimateIndex implements Estimator
func (MeasuredEstimator) EstimateIndex(pos geom.Point, size geom.Size, n int, vp Viewport) int {
	if n <= 0 || size.Height <= 0 {
		return -1
	}
	mv, ok := vp.(MeasuredViewport)
	if !ok {
		return UniformEstimator{}.EstimateIndex(pos, size, n, vp)
	}
	rows := mv.VisibleRows()
	if len(rows) == 0 {
		return UniformEstimator{}.EstimateIndex(pos, size, n, vp)
	}

	top, bottom := rows[0], rows[len(rows)-1]
	switch {
	case pos.Y < top.Bounds.Min.Y:
		// rows above the viewport are not materialized
		above := floorDiv(top.Bounds.Min.Y-pos.Y-1, size.Height) + 1
		return clamp(top.Index-above, 0, n-1)
	case pos.Y >= bottom.Bounds.Max().Y:
		below := floorDiv(pos.Y-bottom.Bounds.Max().Y, size.Height) + 1
		return clamp(bottom.Index+below, 0, n-1)
	}
	for _, r := range rows {
		if pos.Y >= r.Bounds.Min.Y && pos.Y < r.Bounds.Max().Y {
			return clamp(r.Index, 0, n-1)
		}
	}
	// gaps between rows belong to the row above
	idx := top.Index
	for _, r := range rows {
		if r.Bounds.Min.Y > pos.Y {
			break
		}
		idx = r.Index
	}
	return clamp(idx, 0, n-1)
}

// EstimateSlot implements SlotEstimator. Rows above current are passed when
// the item's top edge rises above their midpoint, rows below when its
// bottom edge sinks past theirs.
func (e MeasuredEstimator) EstimateSlot(current int, pos geom.Point, size geom.Size, n int, vp Viewport) int {
	if n <= 0 || size.Height <= 0 {
		return -1
	}
	mv, ok := vp.(MeasuredViewport)
	if !ok || current < 0 || current >= n {
		return e.EstimateIndex(pos, size, n, vp)
	}
	rows := mv.VisibleRows()
	if len(rows) == 0 {
		return e.EstimateIndex(pos, size, n, vp)
	}

	// doubled coordinates keep midpoints of odd heights exact
	top2 := 2 * pos.Y
	bottom2 := 2 * (pos.Y + size.Height)
	if bottom2 <= 2*rows[0].Bounds.Min.Y || top2 >= 2*rows[len(rows)-1].Bounds.Max().Y {
		// entirely outside the laid-out rows
		return e.EstimateIndex(pos, size, n, vp)
	}

	target := current
	for _, r := range rows {
		mid2 := 2*r.Bounds.Min.Y + r.Bounds.Size.Height
		switch {
		case r.Index < current && top2 < mid2:
			target = min(target, r.Index)
		case r.Index > current && bottom2 > mid2:
			target = max(target, r.Index)
		}
	}
	return clamp(target, 0, n-1)
}

// floorDiv rounds toward negative infinity so positions above the list do
// not collapse onto row zero before clamping.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
