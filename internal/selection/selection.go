// Package selection turns operator gestures into ROI rectangles.
//
// A gesture is a press and a release point, either of which may be missing
// when the pointer left the image or the input was incomplete. Gestures that
// are incomplete or span fewer than a minimum number of pixels are rejected
// here, so the statistics engine only ever sees real selections.
package selection

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/thermal-roi/internal/thermal"
)

var (
	// ErrIncomplete is returned when a gesture lacks an endpoint.
	ErrIncomplete = errors.New("incomplete selection")
	// ErrTooSmall is returned when a gesture spans fewer pixels than
	// required on either axis.
	ErrTooSmall = errors.New("selection too small")
)

// Corner is a pointer position in image pixel coordinates. Fractional
// positions are truncated toward zero.
type Corner struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Gesture is one press/release pair. Nil means the endpoint is undefined.
type Gesture struct {
	Press   *Corner
	Release *Corner
}

// Span returns the absolute pixel extent of the gesture on each axis after
// truncation. It returns zeros for incomplete gestures.
func (g Gesture) Span() (dx, dy int) {
	if g.Press == nil || g.Release == nil {
		return 0, 0
	}
	r := g.rect()
	return abs(r.X1 - r.X0), abs(r.Y1 - r.Y0)
}

// Check returns ErrIncomplete or ErrTooSmall when the gesture does not form
// a selection of at least minSpan pixels on both axes.
func (g Gesture) Check(minSpan int) error {
	if g.Press == nil || g.Release == nil {
		return ErrIncomplete
	}
	if !finite(*g.Press) || !finite(*g.Release) {
		return ErrIncomplete
	}
	dx, dy := g.Span()
	if dx < minSpan || dy < minSpan {
		return fmt.Errorf("%w: %dx%d px, need at least %d px on each axis", ErrTooSmall, dx, dy, minSpan)
	}
	return nil
}

// Rect returns the rectangle spanned by the gesture and true, or false when
// Check rejects it. The rectangle is neither sorted nor clamped; that is
// left to thermal.Rect.Normalize.
func (g Gesture) Rect(minSpan int) (thermal.Rect, bool) {
	if g.Check(minSpan) != nil {
		return thermal.Rect{}, false
	}
	return g.rect(), true
}

func (g Gesture) rect() thermal.Rect {
	return thermal.RectFromCorners(g.Press.pixel(), g.Release.pixel())
}

// maxCoord bounds coordinates before integer conversion.
const maxCoord = 1 << 30

// pixel truncates c to integer pixel coordinates within ±maxCoord.
func (c Corner) pixel() thermal.Point {
	return thermal.Point{X: toPixel(c.X), Y: toPixel(c.Y)}
}

func toPixel(v float64) int {
	return int(math.Max(-maxCoord, math.Min(maxCoord, v)))
}

// ParseGesture parses "x0,y0,x1,y1" into a complete gesture.
func ParseGesture(s string) (Gesture, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Gesture{}, fmt.Errorf("%w: want x0,y0,x1,y1, got %q", ErrIncomplete, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Gesture{}, fmt.Errorf("invalid coordinate %q: %w", p, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Gesture{}, fmt.Errorf("coordinate %q is not finite", p)
		}
		v[i] = f
	}
	return Gesture{
		Press:   &Corner{X: v[0], Y: v[1]},
		Release: &Corner{X: v[2], Y: v[3]},
	}, nil
}

// ParseRect parses "x0,y0,x1,y1" into a rectangle without a span check.
func ParseRect(s string) (thermal.Rect, error) {
	g, err := ParseGesture(s)
	if err != nil {
		return thermal.Rect{}, err
	}
	return g.rect(), nil
}

func finite(c Corner) bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
