package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/thermal-roi/internal/thermal"
	"github.com/banshee-data/thermal-roi/internal/units"
)

// Report is the JSON form of an ROI result. Undefined statistics are nil
// and encode as null.
type Report struct {
	Rect       thermal.Rect   `json:"rect"`
	Units      string         `json:"units"`
	ValidCount int            `json:"valid_count"`
	TotalCount int            `json:"total_count"`
	Mean       *float64       `json:"mean"`
	Min        *float64       `json:"min"`
	Max        *float64       `json:"max"`
	MinPos     *thermal.Point `json:"min_pos"`
	MaxPos     *thermal.Point `json:"max_pos"`
}

// NewReport converts r to display units.
func NewReport(r thermal.Result, unit string) Report {
	return Report{
		Rect:       r.Rect,
		Units:      unit,
		ValidCount: r.ValidCount,
		TotalCount: r.TotalCount,
		Mean:       optional(r.Mean, unit),
		Min:        optional(r.Min, unit),
		Max:        optional(r.Max, unit),
		MinPos:     r.MinPos,
		MaxPos:     r.MaxPos,
	}
}

// SummaryReport is the JSON form of the whole-image summary.
type SummaryReport struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Units       string   `json:"units"`
	ValidCount  int      `json:"valid_count"`
	TotalCount  int      `json:"total_count"`
	ValidMin    *float64 `json:"valid_min"`
	ValidMax    *float64 `json:"valid_max"`
	DisplayLow  float64  `json:"display_low"`
	DisplayHigh float64  `json:"display_high"`
}

// NewSummaryReport converts s to display units.
func NewSummaryReport(s thermal.Summary, unit string) SummaryReport {
	return SummaryReport{
		Width:       s.Width,
		Height:      s.Height,
		Units:       unit,
		ValidCount:  s.ValidCount,
		TotalCount:  s.TotalCount,
		ValidMin:    optional(s.ValidMin, unit),
		ValidMax:    optional(s.ValidMax, unit),
		DisplayLow:  units.ConvertTemperature(s.DisplayLow, unit),
		DisplayHigh: units.ConvertTemperature(s.DisplayHigh, unit),
	}
}

func optional(celsius float64, unit string) *float64 {
	if !units.IsFinite(celsius) {
		return nil
	}
	v := units.ConvertTemperature(celsius, unit)
	return &v
}

// Text writes a one-line summary of r, printing n/a for undefined values.
func Text(w io.Writer, r thermal.Result, unit string) error {
	_, err := fmt.Fprintf(w, "ROI %s valid=%d/%d mean=%s min=%s%s max=%s%s\n",
		r.Rect, r.ValidCount, r.TotalCount,
		FormatTemp(r.Mean, unit),
		FormatTemp(r.Min, unit), at(r.MinPos),
		FormatTemp(r.Max, unit), at(r.MaxPos))
	return err
}

// SummaryText writes the whole-image valid range on one line.
func SummaryText(w io.Writer, s thermal.Summary, unit string) error {
	_, err := fmt.Fprintf(w, "image %dx%d valid=%d/%d min=%s max=%s display=[%s, %s]\n",
		s.Width, s.Height, s.ValidCount, s.TotalCount,
		FormatTemp(s.ValidMin, unit), FormatTemp(s.ValidMax, unit),
		FormatTemp(s.DisplayLow, unit), FormatTemp(s.DisplayHigh, unit))
	return err
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func at(p *thermal.Point) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf(" at (%d,%d)", p.X, p.Y)
}
