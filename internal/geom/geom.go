// Package geom holds the integer cell geometry shared by the drag core and
// the terminal views.
package geom

import "fmt"

// Point is a position or displacement in terminal cells
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// IsZero reports whether p is the origin
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is a width/height pair in cells
type Size struct {
	Width  int
	Height int
}

// Rect is an axis-aligned rectangle. Min is inclusive, Min+Size exclusive.
type Rect struct {
	Min  Point
	Size Size
}

// R builds a rectangle from its origin and size
func R(x, y, width, height int) Rect {
	return Rect{Min: Point{X: x, Y: y}, Size: Size{Width: width, Height: height}}
}

// Max returns the exclusive bottom-right corner
func (r Rect) Max() Point {
	return Point{X: r.Min.X + r.Size.Width, Y: r.Min.Y + r.Size.Height}
}

// Empty reports whether the rectangle covers no cells
func (r Rect) Empty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	if r.Empty() {
		return false
	}
	max := r.Max()
	return p.X >= r.Min.X && p.X < max.X && p.Y >= r.Min.Y && p.Y < max.Y
}

// Local translates a point into r's coordinate space
func (r Rect) Local(p Point) Point {
	return p.Sub(r.Min)
}
