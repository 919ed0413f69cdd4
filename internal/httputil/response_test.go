package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONOK(rec, map[string]any{"valid_count": 16, "mean": nil})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"valid_count":16,"mean":null}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		msg    string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "incomplete selection") }, http.StatusBadRequest, "incomplete selection"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no such page") }, http.StatusNotFound, "no such page"},
		{"method", MethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "boom") }, http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeError(t, rec))
		})
	}
}

func TestWriteRendered(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		WriteRendered(rec, "image/png", "roi.png", func(w io.Writer) error {
			_, err := w.Write([]byte("\x89PNG"))
			return err
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "4", rec.Header().Get("Content-Length"))
		assert.Equal(t, `inline; filename="roi.png"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "\x89PNG", rec.Body.String())
	})

	t.Run("render error", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		WriteRendered(rec, "text/html", "", func(w io.Writer) error {
			_, _ = w.Write([]byte("partial"))
			return errors.New("bad template")
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "render failed", decodeError(t, rec))
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})
}
