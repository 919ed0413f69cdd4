package thermal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DisplayOptions controls how the colour scale is fitted to the image.
// Percentiles are in [0,100].
type DisplayOptions struct {
	LowPercentile  float64
	HighPercentile float64
	Margin         float64
}

// DefaultDisplayOptions returns the 1st/99th percentile range widened by
// half a degree.
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{LowPercentile: 1, HighPercentile: 99, Margin: 0.5}
}

// Summary describes the whole image.
type Summary struct {
	Width      int
	Height     int
	ValidCount int
	TotalCount int
	// ValidMin and ValidMax are NaN when no reading is valid.
	ValidMin float64
	ValidMax float64
	// DisplayLow and DisplayHigh bound the colour scale. DisplayHigh is
	// always strictly greater than DisplayLow.
	DisplayLow  float64
	DisplayHigh float64
}

// Summarize computes valid-reading extremes and a robust display range for
// g. The grid itself is not modified.
func Summarize(g *Grid, r ValidityRange, opts DisplayOptions) Summary {
	s := Summary{
		Width:      g.Width(),
		Height:     g.Height(),
		TotalCount: g.Len(),
		ValidMin:   math.NaN(),
		ValidMax:   math.NaN(),
	}

	valid := make([]float64, 0, g.Len())
	for _, v := range g.vals {
		if r.Valid(float64(v)) {
			valid = append(valid, float64(v))
		}
	}
	s.ValidCount = len(valid)

	if len(valid) == 0 {
		s.DisplayLow, s.DisplayHigh = r.Min, r.Max
	} else {
		s.ValidMin = floats.Min(valid)
		s.ValidMax = floats.Max(valid)
		sort.Float64s(valid)
		lo := percentile(valid, opts.LowPercentile/100)
		hi := percentile(valid, opts.HighPercentile/100)
		if lo > hi {
			lo, hi = hi, lo
		}
		s.DisplayLow = lo - opts.Margin
		s.DisplayHigh = hi + opts.Margin
	}
	if !(s.DisplayHigh > s.DisplayLow) {
		s.DisplayHigh = s.DisplayLow + 1
	}
	return s
}

// percentile interpolates linearly between the closest ranks of sorted at
// position (n-1)*p, the same estimate numpy.percentile uses by default.
func percentile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * clampUnit(p)
	i := int(math.Floor(h))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (sorted[i+1]-sorted[i])*(h-float64(i))
}

func clampUnit(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
