// Package render draws temperature grids and ROI statistics.
//
// A Scene bundles everything a sink needs: the sanitised full image, its
// display range, an optional ROI result and the presentation settings.
// Sinks are PNG-family images (gonum/plot), an interactive HTML chart
// (go-echarts) and plain text or JSON reports. Rendering never changes the
// data; unit conversion is applied to labels and scales only.
package render

import (
	"fmt"

	"github.com/banshee-data/thermal-roi/internal/thermal"
	"github.com/banshee-data/thermal-roi/internal/units"
)

// Options are the presentation settings shared by all sinks.
type Options struct {
	Colormap Colormap
	Units    string
	// WidthIn and HeightIn size image output in inches.
	WidthIn  float64
	HeightIn float64
}

// Scene is one renderable view of a thermal image.
type Scene struct {
	// Display is the full image with invalid readings replaced by
	// thermal.Missing.
	Display *thermal.Grid
	Summary thermal.Summary
	// Result is the ROI to annotate, or nil for the plain heatmap.
	Result *thermal.Result
	Options
}

// NewScene sanitises g against r once so every rendering of the scene
// shares the same display grid.
func NewScene(g *thermal.Grid, r thermal.ValidityRange, summary thermal.Summary, opts Options) *Scene {
	if opts.Colormap.make == nil {
		opts.Colormap, _ = LookupColormap(DefaultColormap)
	}
	if opts.Units == "" {
		opts.Units = units.Celsius
	}
	if opts.WidthIn <= 0 {
		opts.WidthIn = 10
	}
	if opts.HeightIn <= 0 {
		opts.HeightIn = 8
	}
	return &Scene{
		Display: thermal.Sanitize(g, r),
		Summary: summary,
		Options: opts,
	}
}

// WithResult returns a shallow copy of s annotated with res.
func (s *Scene) WithResult(res thermal.Result) *Scene {
	cp := *s
	cp.Result = &res
	return &cp
}

// Title is the headline shown above image and chart output.
func (s *Scene) Title() string {
	if s.Result == nil {
		return fmt.Sprintf("Thermal image %dx%d | valid min=%s max=%s",
			s.Summary.Width, s.Summary.Height,
			FormatTemp(s.Summary.ValidMin, s.Units), FormatTemp(s.Summary.ValidMax, s.Units))
	}
	r := s.Result
	return fmt.Sprintf("ROI | mean=%s min=%s max=%s valid=%d/%d",
		FormatTemp(r.Mean, s.Units), FormatTemp(r.Min, s.Units), FormatTemp(r.Max, s.Units),
		r.ValidCount, r.TotalCount)
}

// displayRange returns the colour scale bounds in display units.
func (s *Scene) displayRange() (lo, hi float64) {
	return units.ConvertTemperature(s.Summary.DisplayLow, s.Units),
		units.ConvertTemperature(s.Summary.DisplayHigh, s.Units)
}

// FormatTemp formats a Celsius value in the given display unit, or "n/a"
// when the value is undefined.
func FormatTemp(celsius float64, unit string) string {
	if !units.IsFinite(celsius) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%s", units.ConvertTemperature(celsius, unit), units.Symbol(unit))
}
