// Package testutil provides shared fixtures for thermal-roi tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/thermal-roi/internal/monitoring"
	"github.com/banshee-data/thermal-roi/internal/rawgrid"
	"github.com/banshee-data/thermal-roi/internal/thermal"
)

// UniformGrid returns a width x height grid where every cell holds v.
func UniformGrid(t testing.TB, width, height int, v float32) *thermal.Grid {
	t.Helper()
	vals := make([]float32, width*height)
	for i := range vals {
		vals[i] = v
	}
	g, err := thermal.NewGrid(width, height, vals)
	if err != nil {
		t.Fatalf("UniformGrid: %v", err)
	}
	return g
}

// Cell sets one reading in a fixture grid.
type Cell struct {
	X, Y int
	V    float32
}

// GridWith returns a grid filled with base and the given cells overwritten.
func GridWith(t testing.TB, width, height int, base float32, cells ...Cell) *thermal.Grid {
	t.Helper()
	vals := UniformGrid(t, width, height, base).Values()
	for _, c := range cells {
		vals[c.Y*width+c.X] = c.V
	}
	g, err := thermal.NewGrid(width, height, vals)
	if err != nil {
		t.Fatalf("GridWith: %v", err)
	}
	return g
}

// WriteRawFrame stores g as a little-endian raw frame in a temp directory
// and returns its path.
func WriteRawFrame(t testing.TB, g *thermal.Grid) string {
	t.Helper()
	var buf bytes.Buffer
	if err := rawgrid.Encode(&buf, g, binary.LittleEndian); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	path := filepath.Join(t.TempDir(), "frame.raw")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return path
}

// QuietLogs silences monitoring.Logf for the duration of the test.
func QuietLogs(t testing.TB) {
	t.Helper()
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = orig })
}

// Get serves a GET request for target against h and returns the recorder.
func Get(t testing.TB, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}
