// Package server exposes the analyzer over HTTP: a drag-to-select page, the
// base heatmap, grid summary and per-selection statistics and renderings.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/thermal-roi/internal/httputil"
	"github.com/banshee-data/thermal-roi/internal/monitoring"
	"github.com/banshee-data/thermal-roi/internal/render"
	"github.com/banshee-data/thermal-roi/internal/security"
	"github.com/banshee-data/thermal-roi/internal/selection"
	"github.com/banshee-data/thermal-roi/internal/thermal"
	"github.com/banshee-data/thermal-roi/internal/version"
)

//go:embed static
var staticFiles embed.FS

var indexTmpl = template.Must(template.ParseFS(staticFiles, "static/index.html"))

// Server serves one immutable thermal image. Handlers share the analyzer
// and scene read-only; every request gets its own Result.
type Server struct {
	analyzer *thermal.Analyzer
	scene    *render.Scene
	minSpan  int
	source   string

	heatmapOnce sync.Once
	heatmapPNG  []byte
	heatmapErr  error
}

// Config carries the settings a Server needs beyond the image itself.
type Config struct {
	// MinSpan is the minimum drag size in pixels on each axis.
	MinSpan int
	// Source names the loaded file on the page.
	Source string
}

// NewServer returns a Server for the image behind analyzer and scene.
func NewServer(analyzer *thermal.Analyzer, scene *render.Scene, cfg Config) *Server {
	return &Server{
		analyzer: analyzer,
		scene:    scene,
		minSpan:  cfg.MinSpan,
		source:   cfg.Source,
	}
}

// ServeMux returns the routes without middleware.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/frame.png", s.handleFrame)
	mux.HandleFunc("/heatmap.png", s.handleHeatmap)
	mux.HandleFunc("/api/grid", s.handleGrid)
	mux.HandleFunc("/api/roi", s.handleROI)
	mux.HandleFunc("/roi.png", s.handleROIImage)
	mux.HandleFunc("/roi.html", s.handleROIChart)
	return mux
}

// Handler returns the routes wrapped in request-id and logging middleware.
func (s *Server) Handler() http.Handler {
	return RequestIDMiddleware(LoggingMiddleware(s.ServeMux()))
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down gracefully, waiting at most shutdownTimeout for in-flight
// requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		monitoring.Logf("serving %s on http://%s", s.source, ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		monitoring.Logf("shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		monitoring.Logf("HTTP server stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	if !allowGet(w, r) {
		return
	}
	data := struct {
		Title   string
		Source  string
		Width   int
		Height  int
		MinSpan int
		Version string
	}{
		Title:   s.scene.Title(),
		Source:  s.source,
		Width:   s.scene.Display.Width(),
		Height:  s.scene.Display.Height(),
		MinSpan: s.minSpan,
		Version: version.Version,
	}
	httputil.WriteRendered(w, "text/html; charset=utf-8", "", func(out io.Writer) error {
		return indexTmpl.Execute(out, data)
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	httputil.WriteRendered(w, "image/png", "", func(out io.Writer) error {
		return render.Raster(out, s.scene)
	})
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	s.heatmapOnce.Do(func() {
		var buf bytes.Buffer
		s.heatmapErr = render.PNG(&buf, s.scene)
		s.heatmapPNG = buf.Bytes()
	})
	png, err := s.heatmapPNG, s.heatmapErr
	httputil.WriteRendered(w, "image/png", "heatmap.png", func(out io.Writer) error {
		if err != nil {
			return err
		}
		_, werr := out.Write(png)
		return werr
	})
}

type gridResponse struct {
	Summary   render.SummaryReport `json:"summary"`
	Source    string               `json:"source"`
	Colormap  string               `json:"colormap"`
	MinSpanPx int                  `json:"min_span_px"`
	Version   version.Info         `json:"version"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	httputil.WriteJSONOK(w, gridResponse{
		Summary:   render.NewSummaryReport(s.scene.Summary, s.scene.Units),
		Source:    s.source,
		Colormap:  s.scene.Colormap.Name,
		MinSpanPx: s.minSpan,
		Version:   version.Current(),
	})
}

type roiResponse struct {
	RequestID string `json:"request_id"`
	render.Report
}

func (s *Server) handleROI(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyze(w, r)
	if !ok {
		return
	}
	httputil.WriteJSONOK(w, roiResponse{
		RequestID: RequestID(r.Context()),
		Report:    render.NewReport(res, s.scene.Units),
	})
}

func (s *Server) handleROIImage(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyze(w, r)
	if !ok {
		return
	}
	scene := s.scene.WithResult(res)
	httputil.WriteRendered(w, "image/png", roiFilename(res.Rect, "png"), func(out io.Writer) error {
		return render.PNG(out, scene)
	})
}

func (s *Server) handleROIChart(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyze(w, r)
	if !ok {
		return
	}
	scene := s.scene.WithResult(res)
	httputil.WriteRendered(w, "text/html; charset=utf-8", "", func(out io.Writer) error {
		return render.HTML(out, scene)
	})
}

// analyze applies the selection guard to the query and runs the analyzer.
// It writes the error response itself and returns false when the request
// does not describe a usable selection.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (thermal.Result, bool) {
	if !allowGet(w, r) {
		return thermal.Result{}, false
	}
	g, err := selection.FromQuery(r.URL.Query())
	if err != nil {
		if errors.Is(err, selection.ErrIncomplete) {
			httputil.BadRequest(w, "incomplete selection")
		} else {
			httputil.BadRequest(w, err.Error())
		}
		return thermal.Result{}, false
	}
	if err := g.Check(s.minSpan); err != nil {
		httputil.BadRequest(w, err.Error())
		return thermal.Result{}, false
	}
	rect, _ := g.Rect(s.minSpan)
	res := s.analyzer.Analyze(rect)
	monitoring.Debugf("roi %s id=%s valid=%d/%d", res.Rect, RequestID(r.Context()), res.ValidCount, res.TotalCount)
	return res, true
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httputil.MethodNotAllowed(w)
		return false
	}
	return true
}

func roiFilename(rect thermal.Rect, ext string) string {
	return security.SanitizeFilename(fmt.Sprintf("roi_%d_%d_%d_%d", rect.X0, rect.Y0, rect.X1, rect.Y1)) + "." + ext
}
