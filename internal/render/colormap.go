package render

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// DefaultColormap is used when a scene is built without a colormap.
const DefaultColormap = "extended-blackbody"

var colormaps = map[string]func() palette.ColorMap{
	"extended-blackbody": moreland.ExtendedBlackBody,
	"blackbody":          moreland.BlackBody,
	"kindlmann":          moreland.Kindlmann,
	"extended-kindlmann": moreland.ExtendedKindlmann,
	"smooth-blue-red":    func() palette.ColorMap { return moreland.SmoothBlueRed() },
}

// Colormap is a named perceptual colour map.
type Colormap struct {
	Name string
	make func() palette.ColorMap
}

// ColormapNames lists the accepted colormap names in sorted order.
func ColormapNames() []string {
	names := make([]string, 0, len(colormaps))
	for n := range colormaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupColormap returns the colormap registered under name.
func LookupColormap(name string) (Colormap, error) {
	fn, ok := colormaps[name]
	if !ok {
		return Colormap{}, fmt.Errorf("unknown colormap %q, must be one of: %v", name, ColormapNames())
	}
	return Colormap{Name: name, make: fn}, nil
}

// ColorMap returns a fresh colour map scaled to [lo, hi].
func (c Colormap) ColorMap(lo, hi float64) palette.ColorMap {
	cm := c.make()
	cm.SetMin(lo)
	cm.SetMax(hi)
	return cm
}

// Palette samples n evenly spaced colours from the map.
func (c Colormap) Palette(n int) palette.Palette {
	return c.ColorMap(0, 1).Palette(n)
}

// HexStops returns n evenly spaced colours as "#rrggbb" strings.
func (c Colormap) HexStops(n int) []string {
	cols := c.Palette(n).Colors()
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = hex(col)
	}
	return out
}

func hex(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
