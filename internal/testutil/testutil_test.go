package testutil

import (
	"encoding/binary"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/thermal-roi/internal/monitoring"
	"github.com/banshee-data/thermal-roi/internal/rawgrid"
)

func TestGridWith(t *testing.T) {
	g := GridWith(t, 3, 2, 20, Cell{X: 2, Y: 1, V: 99})
	assert.Equal(t, float32(20), g.At(0, 0))
	assert.Equal(t, float32(99), g.At(2, 1))
}

func TestWriteRawFrame(t *testing.T) {
	g := UniformGrid(t, 4, 3, 36.5)
	path := WriteRawFrame(t, g)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := rawgrid.Decode(data, 4, 3, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, g.Values(), got.Values())
}

func TestQuietLogs(t *testing.T) {
	var got []string
	monitoring.SetLogger(func(format string, v ...any) { got = append(got, format) })
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	t.Run("silenced", func(t *testing.T) {
		QuietLogs(t)
		monitoring.Logf("dropped")
	})
	monitoring.Logf("restored")
	assert.Equal(t, []string{"restored"}, got)
}

func TestGet(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := Get(t, h, "/anything")
	AssertStatusCode(t, rec.Code, http.StatusTeapot)
}
