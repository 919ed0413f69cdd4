package thermal

import "fmt"

// Point is a pixel position in grid coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is a half-open pixel rectangle: columns [X0, X1) and rows [Y0, Y1).
type Rect struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// RectFromCorners builds a rectangle from two opposite corners in any order.
func RectFromCorners(a, b Point) Rect {
	return Rect{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y}
}

// Normalize sorts the corner coordinates and clamps them to [0,width] and
// [0,height]. Out-of-range input is corrected, never rejected.
func (r Rect) Normalize(width, height int) Rect {
	x0, x1 := sortPair(r.X0, r.X1)
	y0, y1 := sortPair(r.Y0, r.Y1)
	return Rect{
		X0: clamp(x0, 0, width),
		Y0: clamp(y0, 0, height),
		X1: clamp(x1, 0, width),
		Y1: clamp(y1, 0, height),
	}
}

// Dx returns the rectangle width. Unnormalised rectangles may return a
// negative value.
func (r Rect) Dx() int { return r.X1 - r.X0 }

// Dy returns the rectangle height.
func (r Rect) Dy() int { return r.Y1 - r.Y0 }

// Area returns the number of cells covered, or 0 for degenerate rectangles.
func (r Rect) Area() int {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return 0
	}
	return r.Dx() * r.Dy()
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.Area() == 0 }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X0, Y: r.Y0} }

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d)-[%d,%d)", r.X0, r.Y0, r.X1, r.Y1)
}

func sortPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
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
