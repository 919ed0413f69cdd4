package thermal

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Result holds the outcome of analysing one ROI. Each call produces a fresh
// Result owned by the caller.
type Result struct {
	// Rect is the normalised rectangle that was analysed.
	Rect Rect
	// Cleaned is the ROI-shaped grid with invalid cells set to Missing.
	Cleaned *Grid

	ValidCount int
	TotalCount int

	// Mean, Min and Max are NaN when ValidCount is zero.
	Mean float64
	Min  float64
	Max  float64

	// MinPos and MaxPos are global image coordinates of the first minimum
	// and maximum in row-major order. Both are nil when ValidCount is zero.
	MinPos *Point
	MaxPos *Point
}

// HasStats reports whether the ROI contained at least one valid reading.
func (r Result) HasStats() bool { return r.ValidCount > 0 }

// Compute derives ROI statistics from an already sanitised sub-grid whose
// top-left cell sits at origin in the full image. Only the origin of the
// rectangle is used to translate positions.
func Compute(cleaned *Grid, origin Rect) Result {
	res := Result{
		Rect:       origin,
		Cleaned:    cleaned,
		TotalCount: cleaned.Len(),
		Mean:       math.NaN(),
		Min:        math.NaN(),
		Max:        math.NaN(),
	}

	valid := make([]float64, 0, cleaned.Len())
	index := make([]int, 0, cleaned.Len())
	for i, v := range cleaned.vals {
		if math.IsNaN(float64(v)) {
			continue
		}
		valid = append(valid, float64(v))
		index = append(index, i)
	}
	res.ValidCount = len(valid)
	if res.ValidCount == 0 {
		return res
	}

	res.Mean = stat.Mean(valid, nil)

	// MinIdx and MaxIdx return the first extremum, which gives the
	// row-major tie-break since valid preserves storage order.
	lo := floats.MinIdx(valid)
	hi := floats.MaxIdx(valid)
	res.Min = valid[lo]
	res.Max = valid[hi]
	res.MinPos = globalPoint(index[lo], cleaned.width, origin)
	res.MaxPos = globalPoint(index[hi], cleaned.width, origin)
	return res
}

func globalPoint(flat, width int, origin Rect) *Point {
	row, col := flat/width, flat%width
	return &Point{X: origin.X0 + col, Y: origin.Y0 + row}
}
