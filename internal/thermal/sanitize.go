package thermal

import (
	"fmt"
	"math"
)

// Missing is the marker stored in place of invalid readings.
var Missing = float32(math.NaN())

// ValidityRange is the closed interval of physically plausible readings.
type ValidityRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate checks that the range is finite and ordered.
func (r ValidityRange) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("validity range must be finite, got [%v, %v]", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("validity range min %v greater than max %v", r.Min, r.Max)
	}
	return nil
}

// Valid reports whether v is finite and inside the range.
func (r ValidityRange) Valid(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// Sanitize returns a copy of g in which every non-finite or out-of-range
// cell is replaced by Missing. Valid cells are preserved exactly.
func Sanitize(g *Grid, r ValidityRange) *Grid {
	out := make([]float32, len(g.vals))
	for i, v := range g.vals {
		if r.Valid(float64(v)) {
			out[i] = v
		} else {
			out[i] = Missing
		}
	}
	return newGridOwned(g.width, g.height, out)
}
