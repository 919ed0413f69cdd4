package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// Raster writes the display grid as a bare PNG with one image pixel per
// grid cell and no axes, so pointer positions map directly to cells.
func Raster(w io.Writer, s *Scene) error {
	g := s.Display
	cols := s.Colormap.Palette(paletteSize).Colors()
	lo, hi := s.Summary.DisplayLow, s.Summary.DisplayHigh
	scale := float64(len(cols)-1) / (hi - lo)

	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			v := float64(g.At(x, y))
			var c color.Color
			switch {
			case math.IsNaN(v):
				c = nanColor
			case v <= lo:
				c = cols[0]
			case v >= hi:
				c = cols[len(cols)-1]
			default:
				c = cols[int((v-lo)*scale+0.5)]
			}
			img.Set(x, y, c)
		}
	}
	return png.Encode(w, img)
}
