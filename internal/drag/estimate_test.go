package drag

import (
	"testing"

	"github.com/dori/dragboard/internal/geom"
)

func TestUniformEstimatorAlwaysClamped(t *testing.T) {
	var e UniformEstimator
	for n := 1; n <= 6; n++ {
		for first := 0; first < 8; first++ {
			for offset := 0; offset < 12; offset += 3 {
				for height := 1; height <= 7; height += 2 {
					for y := -60; y <= 60; y += 7 {
						got := e.EstimateIndex(geom.Pt(0, y), geom.Size{Height: height}, n, fixedViewport{first, offset})
						if got < 0 || got > n-1 {
							t.Fatalf("n=%d first=%d offset=%d height=%d y=%d: got %d outside [0,%d]",
								n, first, offset, height, y, got, n-1)
						}
					}
				}
			}
		}
	}
}

func TestUniformEstimator(t *testing.T) {
	tests := []struct {
		name   string
		y      int
		height int
		n      int
		vp     Viewport
		want   int
	}{
		{"top row", 0, 3, 10, fixedViewport{}, 0},
		{"inside row 2", 7, 3, 10, fixedViewport{}, 2},
		{"boundary", 9, 3, 10, fixedViewport{}, 3},
		{"scrolled", 1, 3, 10, fixedViewport{first: 4, offset: 2}, 5},
		{"past end", 200, 3, 10, fixedViewport{}, 9},
		{"negative floors down", -1, 3, 10, fixedViewport{first: 4}, 3},
		{"nil viewport", 6, 3, 10, nil, 2},
		{"empty list", 5, 3, 0, fixedViewport{}, -1},
		{"zero height", 5, 0, 10, fixedViewport{}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniformEstimator{}.EstimateIndex(geom.Pt(0, tt.y), geom.Size{Height: tt.height}, tt.n, tt.vp)
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

type measuredViewport struct {
	fixedViewport
	rows []Row
}

func (v measuredViewport) VisibleRows() []Row { return v.rows }

func TestMeasuredEstimator(t *testing.T) {
	// rows 3..5 laid out with heights 3, 6, 2; row 3 scrolled 1 cell out
	vp := measuredViewport{
		fixedViewport: fixedViewport{first: 3, offset: 1},
		rows: []Row{
			{Index: 3, Bounds: geom.R(0, -1, 20, 3)},
			{Index: 4, Bounds: geom.R(0, 2, 20, 6)},
			{Index: 5, Bounds: geom.R(0, 8, 20, 2)},
		},
	}
	size := geom.Size{Width: 20, Height: 3}

	tests := []struct {
		name string
		y    int
		want int
	}{
		{"first row", 0, 3},
		{"tall row top", 2, 4},
		{"tall row bottom", 7, 4},
		{"short row", 9, 5},
		{"just above", -2, 2},
		{"one row above", -4, 2},
		{"two rows above", -5, 1},
		{"just below", 10, 6},
		{"far below", 100, 9},
		{"far above", -100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeasuredEstimator{}.EstimateIndex(geom.Pt(0, tt.y), size, 10, vp)
			if got != tt.want {
				t.Errorf("y=%d: got %d, want %d", tt.y, got, tt.want)
			}
		})
	}
}

func TestMeasuredEstimatorDiffersFromUniformOnTallRows(t *testing.T) {
	vp := measuredViewport{
		rows: []Row{
			{Index: 0, Bounds: geom.R(0, 0, 10, 3)},
			{Index: 1, Bounds: geom.R(0, 3, 10, 9)},
			{Index: 2, Bounds: geom.R(0, 12, 10, 3)},
		},
	}
	size := geom.Size{Width: 10, Height: 3}
	pos := geom.Pt(0, 10)

	if got := (UniformEstimator{}).EstimateIndex(pos, size, 3, vp); got != 2 {
		t.Errorf("uniform = %d, want 2", got)
	}
	if got := (MeasuredEstimator{}).EstimateIndex(pos, size, 3, vp); got != 1 {
		t.Errorf("measured = %d, want 1", got)
	}
}

func TestMeasuredEstimatorFallsBack(t *testing.T) {
	size := geom.Size{Height: 3}
	if got := (MeasuredEstimator{}).EstimateIndex(geom.Pt(0, 7), size, 10, fixedViewport{}); got != 2 {
		t.Errorf("plain viewport: got %d, want 2", got)
	}
	if got := (MeasuredEstimator{}).EstimateIndex(geom.Pt(0, 7), size, 10, measuredViewport{}); got != 2 {
		t.Errorf("no rows: got %d, want 2", got)
	}
}

func TestMeasuredSlotSettlesPastTallRow(t *testing.T) {
	// A is one line, B five, C one; A sits on top
	before := measuredViewport{rows: []Row{
		{Index: 0, Bounds: geom.R(0, 0, 10, 1)},
		{Index: 1, Bounds: geom.R(0, 1, 10, 5)},
		{Index: 2, Bounds: geom.R(0, 6, 10, 1)},
	}}
	// after A moved below B
	after := measuredViewport{rows: []Row{
		{Index: 0, Bounds: geom.R(0, 0, 10, 5)},
		{Index: 1, Bounds: geom.R(0, 5, 10, 1)},
		{Index: 2, Bounds: geom.R(0, 6, 10, 1)},
	}}
	short := geom.Size{Width: 10, Height: 1}
	tall := geom.Size{Width: 10, Height: 5}

	tests := []struct {
		name    string
		vp      measuredViewport
		current int
		size    geom.Size
		y       int
		want    int
	}{
		{"short above midpoint", before, 0, short, 2, 0},
		{"short past midpoint", before, 0, short, 3, 1},
		{"short stays after swap", after, 1, short, 3, 1},
		{"short stays further down", after, 1, short, 4, 1},
		{"short back over midpoint", after, 1, short, 2, 0},
		{"tall at rest", before, 1, tall, 1, 1},
		{"tall up one line", before, 1, tall, 0, 0},
		{"tall down one line", before, 1, tall, 2, 2},
		{"far below", before, 0, short, 50, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeasuredEstimator{}.EstimateSlot(tt.current, geom.Pt(0, tt.y), tt.size, 3, tt.vp)
			if got != tt.want {
				t.Errorf("y=%d: got %d, want %d", tt.y, got, tt.want)
			}
		})
	}
}

func TestMeasuredSlotFallsBack(t *testing.T) {
	size := geom.Size{Height: 3}
	if got := (MeasuredEstimator{}).EstimateSlot(0, geom.Pt(0, 7), size, 10, fixedViewport{}); got != 2 {
		t.Errorf("plain viewport: got %d, want 2", got)
	}
	if got := (MeasuredEstimator{}).EstimateSlot(0, geom.Pt(0, 7), geom.Size{}, 10, fixedViewport{}); got != -1 {
		t.Errorf("zero height: got %d, want -1", got)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 3, 2}, {6, 3, 2}, {-1, 3, -1}, {-3, 3, -1}, {-4, 3, -2}, {0, 5, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
