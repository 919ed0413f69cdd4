// Package rawgrid loads headerless float32 thermal frames from disk.
//
// A frame is width*height IEEE-754 binary32 values stored row by row with
// no header or padding, in a single configured byte order.
package rawgrid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/banshee-data/thermal-roi/internal/fsutil"
	"github.com/banshee-data/thermal-roi/internal/monitoring"
	"github.com/banshee-data/thermal-roi/internal/thermal"
)

const bytesPerValue = 4

// ErrSizeMismatch is returned when the byte stream does not hold exactly
// width*height values.
var ErrSizeMismatch = errors.New("raw grid size mismatch")

// SizeError reports how many values were read against how many were
// expected. It wraps ErrSizeMismatch.
type SizeError struct {
	Read     int
	Expected int
	// Trailing is the number of bytes left over after the last whole value.
	Trailing int
}

func (e *SizeError) Error() string {
	msg := fmt.Sprintf("read %d values, expected %d", e.Read, e.Expected)
	if e.Trailing > 0 {
		msg += fmt.Sprintf(" (%d trailing bytes)", e.Trailing)
	}
	return msg
}

func (e *SizeError) Unwrap() error { return ErrSizeMismatch }

// ParseByteOrder maps "little" or "big" (case-insensitive) to a byte order.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "le", "":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("unsupported byte order %q (want little or big)", s)
}

// Decode interprets data as a width x height frame.
func Decode(data []byte, width, height int, order binary.ByteOrder) (*thermal.Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	want := width * height
	if len(data) != want*bytesPerValue {
		return nil, &SizeError{
			Read:     len(data) / bytesPerValue,
			Expected: want,
			Trailing: len(data) % bytesPerValue,
		}
	}
	vals := make([]float32, want)
	for i := range vals {
		vals[i] = math.Float32frombits(order.Uint32(data[i*bytesPerValue:]))
	}
	return thermal.NewGrid(width, height, vals)
}

// Encode writes g to w in the raw frame layout.
func Encode(w io.Writer, g *thermal.Grid, order binary.ByteOrder) error {
	buf := make([]byte, g.Len()*bytesPerValue)
	for i, v := range g.Values() {
		order.PutUint32(buf[i*bytesPerValue:], math.Float32bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// Source reads frames of a fixed shape through a FileSystem.
type Source struct {
	FS     fsutil.FileSystem
	Width  int
	Height int
	Order  binary.ByteOrder
}

// NewSource returns a Source backed by the OS filesystem.
func NewSource(width, height int, order binary.ByteOrder) *Source {
	return &Source{FS: fsutil.OSFileSystem{}, Width: width, Height: height, Order: order}
}

// Load reads and decodes the frame at path.
func (s *Source) Load(path string) (*thermal.Grid, error) {
	fsys := s.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	order := s.Order
	if order == nil {
		order = binary.LittleEndian
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw grid: %w", err)
	}
	g, err := Decode(data, s.Width, s.Height, order)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	monitoring.Debugf("loaded %s: %dx%d (%s)", path, s.Width, s.Height, order)
	return g, nil
}
