package thermal

import (
	"fmt"
	"math"
)

// Grid is a row-major 2D array of temperature readings in degrees Celsius.
// Index (x, y) addresses column x of row y; the origin is the top-left
// pixel. A Grid is never mutated after construction, so it may be shared by
// any number of concurrent readers.
type Grid struct {
	width  int
	height int
	vals   []float32
}

// NewGrid copies vals into a new width x height grid. len(vals) must equal
// width*height. Zero-sized grids are permitted.
func NewGrid(width, height int, vals []float32) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	if len(vals) != width*height {
		return nil, fmt.Errorf("grid %dx%d needs %d values, got %d", width, height, width*height, len(vals))
	}
	cp := make([]float32, len(vals))
	copy(cp, vals)
	return &Grid{width: width, height: height, vals: cp}, nil
}

// newGridOwned wraps vals without copying. Callers must not retain vals.
func newGridOwned(width, height int, vals []float32) *Grid {
	return &Grid{width: width, height: height, vals: vals}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.vals) }

// Bounds returns the rectangle covering the whole grid.
func (g *Grid) Bounds() Rect { return Rect{X0: 0, Y0: 0, X1: g.width, Y1: g.height} }

// At returns the reading at column x, row y. It panics if (x, y) is outside
// the grid.
func (g *Grid) At(x, y int) float32 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("thermal: index (%d,%d) out of range for %dx%d grid", x, y, g.width, g.height))
	}
	return g.vals[y*g.width+x]
}

// IsMissing reports whether the cell at (x, y) holds the missing-value marker.
func (g *Grid) IsMissing(x, y int) bool {
	return math.IsNaN(float64(g.At(x, y)))
}

// Values returns a copy of the readings in row-major order.
func (g *Grid) Values() []float32 {
	cp := make([]float32, len(g.vals))
	copy(cp, g.vals)
	return cp
}

// Sub returns a copy of the cells covered by r after normalising r against
// the grid bounds. A rectangle that clamps to zero area yields an empty grid.
func (g *Grid) Sub(r Rect) *Grid {
	r = r.Normalize(g.width, g.height)
	w, h := r.Dx(), r.Dy()
	out := make([]float32, 0, w*h)
	for y := r.Y0; y < r.Y1; y++ {
		row := y * g.width
		out = append(out, g.vals[row+r.X0:row+r.X1]...)
	}
	return newGridOwned(w, h, out)
}
