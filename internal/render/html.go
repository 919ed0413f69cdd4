package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/thermal-roi/internal/thermal"
	"github.com/banshee-data/thermal-roi/internal/units"
)

// maxChartPoints bounds the scatter size; larger regions are strided.
const maxChartPoints = 40000

// HTML renders the scene as an interactive go-echarts scatter heatmap. With
// a result, only the cleaned ROI is charted and the extrema are added as
// separate series; otherwise the whole display grid is charted.
func HTML(w io.Writer, s *Scene) error {
	g, origin := s.Display, thermal.Point{}
	if s.Result != nil {
		g, origin = s.Result.Cleaned, s.Result.Rect.Origin()
	}

	stride := 1
	if n := g.Len(); n > maxChartPoints {
		stride = int(math.Ceil(math.Sqrt(float64(n) / maxChartPoints)))
	}

	data := make([]opts.ScatterData, 0, g.Len()/(stride*stride)+1)
	for y := 0; y < g.Height(); y += stride {
		for x := 0; x < g.Width(); x += stride {
			v := float64(g.At(x, y))
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.ScatterData{
				Value: []interface{}{origin.X + x, origin.Y + y, round2(units.ConvertTemperature(v, s.Units))},
			})
		}
	}

	lo, hi := s.displayRange()
	sym := units.Symbol(s.Units)
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Thermal ROI", Theme: "dark", Width: "960px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Title(), Subtitle: fmt.Sprintf("points=%d stride=%d colormap=%s", len(data), stride, s.Colormap.Name)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (px)", NameLocation: "middle", NameGap: 25, Min: origin.X, Max: origin.X + g.Width()}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (px)", NameLocation: "middle", NameGap: 35, Min: origin.Y, Max: origin.Y + g.Height(), Inverse: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "2",
			Text:       []string{sym, ""},
			InRange:    &opts.VisualMapInRange{Color: s.Colormap.HexStops(10)},
		}),
	)
	scatter.AddSeries("temperature", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4 * stride}))

	if r := s.Result; r != nil {
		addMarker(scatter, "min", r.Min, r.MinPos, minColor, s.Units)
		addMarker(scatter, "max", r.Max, r.MaxPos, maxColor, s.Units)
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func addMarker(sc *charts.Scatter, name string, v float64, pos *thermal.Point, c color.Color, unit string) {
	if pos == nil {
		return
	}
	pt := opts.ScatterData{
		Name:       fmt.Sprintf("%s %s", name, FormatTemp(v, unit)),
		Value:      []interface{}{pos.X, pos.Y, round2(units.ConvertTemperature(v, unit))},
		Symbol:     "diamond",
		SymbolSize: 16,
	}
	sc.AddSeries(name, []opts.ScatterData{pt},
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hex(c)}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right", Formatter: "{b}"}),
	)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
