package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/thermal-roi/internal/httputil"
	"github.com/banshee-data/thermal-roi/internal/monitoring"
	"github.com/banshee-data/thermal-roi/internal/render"
	"github.com/banshee-data/thermal-roi/internal/testutil"
	"github.com/banshee-data/thermal-roi/internal/thermal"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	testutil.QuietLogs(t)

	g := testutil.GridWith(t, 32, 24, 30,
		testutil.Cell{X: 5, Y: 4, V: 12},
		testutil.Cell{X: 9, Y: 7, V: 88},
	)
	// Rows 16..23 hold only invalid readings.
	vals := g.Values()
	for i := 16 * 32; i < len(vals); i++ {
		vals[i] = -100
	}
	g, err := thermal.NewGrid(32, 24, vals)
	require.NoError(t, err)

	vr := thermal.ValidityRange{Min: 0, Max: 120}
	a := thermal.NewAnalyzer(g, vr)
	cm, err := render.LookupColormap("extended-blackbody")
	require.NoError(t, err)
	scene := render.NewScene(g, vr, a.Summary(thermal.DefaultDisplayOptions()), render.Options{Colormap: cm, WidthIn: 4, HeightIn: 3})
	return NewServer(a, scene, Config{MinSpan: 5, Source: "frame.raw"})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHandleROI(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := testutil.Get(t, h, "/api/roi?x0=0&y0=0&x1=16&y1=12")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body struct {
		RequestID  string         `json:"request_id"`
		ValidCount int            `json:"valid_count"`
		TotalCount int            `json:"total_count"`
		Min        *float64       `json:"min"`
		Max        *float64       `json:"max"`
		MinPos     *thermal.Point `json:"min_pos"`
		MaxPos     *thermal.Point `json:"max_pos"`
		Rect       thermal.Rect   `json:"rect"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 192, body.ValidCount)
	assert.Equal(t, 192, body.TotalCount)
	require.NotNil(t, body.Min)
	assert.Equal(t, 12.0, *body.Min)
	assert.Equal(t, 88.0, *body.Max)
	assert.Equal(t, &thermal.Point{X: 5, Y: 4}, body.MinPos)
	assert.Equal(t, &thermal.Point{X: 9, Y: 7}, body.MaxPos)

	_, err := uuid.Parse(body.RequestID)
	require.NoError(t, err)
	assert.Equal(t, body.RequestID, rec.Header().Get(httputil.RequestIDHeader))
}

func TestHandleROIReversedAndClamped(t *testing.T) {
	s := newTestServer(t)
	rec := testutil.Get(t, s.Handler(), "/api/roi?x0=100&y0=10&x1=20&y1=-7")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body render.Report
	decode(t, rec, &body)
	assert.Equal(t, thermal.Rect{X0: 20, Y0: 0, X1: 32, Y1: 10}, body.Rect)
	assert.Equal(t, 120, body.TotalCount)
}

func TestHandleROIHugeCoordinates(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		target string
		want   thermal.Rect
	}{
		{"/api/roi?x0=2&y0=2&x1=1e19&y1=1e19", thermal.Rect{X0: 2, Y0: 2, X1: 32, Y1: 24}},
		{"/api/roi?x0=-1e19&y0=-1e19&x1=5&y1=5", thermal.Rect{X0: 0, Y0: 0, X1: 5, Y1: 5}},
	}
	for _, tt := range tests {
		rec := testutil.Get(t, h, tt.target)
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

		var body render.Report
		decode(t, rec, &body)
		assert.Equal(t, tt.want, body.Rect, tt.target)
		assert.Equal(t, tt.want.Area(), body.TotalCount, tt.target)
	}
}

func TestHandleROIAllInvalid(t *testing.T) {
	s := newTestServer(t)
	rec := testutil.Get(t, s.Handler(), "/api/roi?x0=0&y0=16&x1=10&y1=24")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, 0.0, body["valid_count"])
	assert.Equal(t, 80.0, body["total_count"])
	for _, k := range []string{"mean", "min", "max", "min_pos", "max_pos"} {
		v, ok := body[k]
		assert.True(t, ok, k)
		assert.Nil(t, v, k)
	}
}

func TestHandleROIRejectsBadSelections(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"no coordinates", "", "incomplete selection"},
		{"missing release", "?x0=1&y0=1", "incomplete selection"},
		{"empty value", "?x0=1&y0=1&x1=&y1=9", "incomplete selection"},
		{"malformed", "?x0=a&y0=1&x1=9&y1=9", "invalid x0"},
		{"too small", "?x0=1&y0=1&x1=4&y1=20", "selection too small"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/roi", "/roi.png", "/roi.html"} {
				rec := testutil.Get(t, h, path+tt.query)
				testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
				var body map[string]string
				decode(t, rec, &body)
				assert.Contains(t, body["error"], tt.want, path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/roi?x0=0&y0=0&x1=9&y1=9", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestImagesAndPages(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	for _, path := range []string{"/frame.png", "/heatmap.png", "/heatmap.png", "/roi.png?x0=2&y0=2&x1=20&y1=14"} {
		rec := testutil.Get(t, h, path)
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"), path)
		_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		assert.NoError(t, err, path)
	}

	rec := testutil.Get(t, h, "/roi.png?x0=2&y0=2&x1=20&y1=14")
	assert.Equal(t, `inline; filename="roi_2_2_20_14.png"`, rec.Header().Get("Content-Disposition"))

	rec = testutil.Get(t, h, "/roi.html?x0=0&y0=16&x1=10&y1=24")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "mean=n/a")

	rec = testutil.Get(t, h, "/")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "frame.raw")
	assert.Contains(t, rec.Body.String(), "/frame.png")

	rec = testutil.Get(t, h, "/nope")
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestHandleGrid(t *testing.T) {
	s := newTestServer(t)
	rec := testutil.Get(t, s.Handler(), "/api/grid")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body gridResponse
	decode(t, rec, &body)
	assert.Equal(t, 32, body.Summary.Width)
	assert.Equal(t, 16*32, body.Summary.ValidCount)
	assert.Equal(t, 5, body.MinSpanPx)
	assert.Equal(t, "extended-blackbody", body.Colormap)
	require.NotNil(t, body.Summary.ValidMin)
	assert.Equal(t, 12.0, *body.Summary.ValidMin)
}

func TestLoggingMiddleware(t *testing.T) {
	var lines []string
	orig := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...any) {
		lines = append(lines, format)
	})
	t.Cleanup(func() { monitoring.Logf = orig })

	h := RequestIDMiddleware(LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestID(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})))
	rec := testutil.Get(t, h, "/x")
	testutil.AssertStatusCode(t, rec.Code, http.StatusTeapot)
	require.Len(t, lines, 1)
	assert.True(t, strings.Contains(lines[0], "id=%s"))
	assert.Empty(t, RequestID(context.Background()))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, time.Second) }()

	url := "http://" + ln.Addr().String() + "/api/grid"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
