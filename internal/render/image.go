package render

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/thermal-roi/internal/thermal"
	"github.com/banshee-data/thermal-roi/internal/units"
)

const (
	paletteSize = 256
	colorBarW   = 1.2 * vg.Inch
)

var (
	roiColor = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	minColor = color.RGBA{R: 30, G: 90, B: 255, A: 255}
	maxColor = color.RGBA{R: 255, G: 40, B: 40, A: 255}
	nanColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Formats lists the image formats accepted by Image.
var Formats = []string{"png", "svg", "pdf", "jpg"}

// FormatForPath maps a file extension to an image format.
func FormatForPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "jpeg" {
		ext = "jpg"
	}
	for _, f := range Formats {
		if ext == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported image extension %q, must be one of: %v", filepath.Ext(path), Formats)
}

// PNG writes the scene as a PNG image.
func PNG(w io.Writer, s *Scene) error {
	return Image(w, s, "png")
}

// Image draws the heatmap with a colour bar and, when the scene carries a
// result, the ROI outline and extremum markers.
func Image(w io.Writer, s *Scene, format string) error {
	width := vg.Length(s.WidthIn) * vg.Inch
	height := vg.Length(s.HeightIn) * vg.Inch
	if width <= colorBarW {
		return fmt.Errorf("plot width %.1fin too small", s.WidthIn)
	}

	plt, err := s.heatmapPlot()
	if err != nil {
		return err
	}
	bar := s.colorBarPlot()

	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return err
	}
	dc := draw.New(c)
	plt.Draw(draw.Crop(dc, 0, -colorBarW, 0, 0))
	bar.Draw(draw.Crop(dc, width-colorBarW, 0, 0, 0))

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return nil
}

func (s *Scene) heatmapPlot() (*plot.Plot, error) {
	g := s.Display
	top := float64(g.Height() - 1)

	p := plot.New()
	p.Title.Text = s.Title()
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.Y.Tick.Marker = rowTicker{height: g.Height()}
	p.X.Min, p.X.Max = -0.5, float64(g.Width())-0.5
	p.Y.Min, p.Y.Max = -0.5, top+0.5

	pal := s.Colormap.Palette(paletteSize)
	cols := pal.Colors()
	hm := plotter.NewHeatMap(heatGrid{g: g}, pal)
	hm.Min, hm.Max = s.Summary.DisplayLow, s.Summary.DisplayHigh
	hm.Underflow = cols[0]
	hm.Overflow = cols[len(cols)-1]
	hm.NaN = nanColor
	hm.Rasterized = true
	p.Add(hm)

	if s.Result == nil {
		return p, nil
	}
	r := s.Result

	x0, x1 := float64(r.Rect.X0)-0.5, float64(r.Rect.X1)-0.5
	yTop, yBottom := top+0.5-float64(r.Rect.Y0), top+0.5-float64(r.Rect.Y1)
	outline, err := plotter.NewLine(plotter.XYs{
		{X: x0, Y: yTop}, {X: x1, Y: yTop}, {X: x1, Y: yBottom}, {X: x0, Y: yBottom}, {X: x0, Y: yTop},
	})
	if err != nil {
		return nil, fmt.Errorf("roi outline: %w", err)
	}
	outline.Color = roiColor
	outline.Width = vg.Points(2)
	p.Add(outline)
	p.Legend.Add(fmt.Sprintf("ROI %s", r.Rect), outline)

	for _, m := range []struct {
		label string
		value float64
		pos   *thermal.Point
		color color.Color
	}{
		{"min", r.Min, r.MinPos, minColor},
		{"max", r.Max, r.MaxPos, maxColor},
	} {
		if m.pos == nil {
			continue
		}
		sc, err := plotter.NewScatter(plotter.XYs{{X: float64(m.pos.X), Y: top - float64(m.pos.Y)}})
		if err != nil {
			return nil, fmt.Errorf("%s marker: %w", m.label, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: m.color, Radius: vg.Points(5), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("%s %s @ (%d,%d)", m.label, FormatTemp(m.value, s.Units), m.pos.X, m.pos.Y), sc)
	}
	p.Legend.Top = true
	return p, nil
}

func (s *Scene) colorBarPlot() *plot.Plot {
	lo, hi := s.displayRange()
	bar := plot.New()
	bar.HideX()
	bar.Y.Label.Text = units.Symbol(s.Units)
	bar.Add(&plotter.ColorBar{ColorMap: s.Colormap.ColorMap(lo, hi), Vertical: true, Colors: paletteSize})
	return bar
}

// heatGrid presents a thermal grid to plotter.HeatMap with row 0 at the
// top of the plot. HeatMap draws Y increasing upward, so rows are flipped.
type heatGrid struct {
	g *thermal.Grid
}

func (h heatGrid) Dims() (c, r int) { return h.g.Width(), h.g.Height() }
func (h heatGrid) Z(c, r int) float64 {
	return float64(h.g.At(c, h.g.Height()-1-r))
}
func (h heatGrid) X(c int) float64 { return float64(c) }
func (h heatGrid) Y(r int) float64 { return float64(r) }

// rowTicker labels the flipped Y axis with image row numbers.
type rowTicker struct {
	height int
}

func (t rowTicker) Ticks(min, max float64) []plot.Tick {
	top := float64(t.height - 1)
	ticks := plot.DefaultTicks{}.Ticks(top-max, top-min)
	for i := range ticks {
		ticks[i].Value = top - ticks[i].Value
	}
	return ticks
}
