package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/thermal-roi/internal/config"
	"github.com/banshee-data/thermal-roi/internal/fsutil"
	"github.com/banshee-data/thermal-roi/internal/monitoring"
	"github.com/banshee-data/thermal-roi/internal/rawgrid"
	"github.com/banshee-data/thermal-roi/internal/render"
	"github.com/banshee-data/thermal-roi/internal/security"
	"github.com/banshee-data/thermal-roi/internal/selection"
	"github.com/banshee-data/thermal-roi/internal/server"
	"github.com/banshee-data/thermal-roi/internal/thermal"
)

// commonFlags are accepted by every frame-reading subcommand. Flags the
// user sets explicitly override the config file and environment.
type commonFlags struct {
	fs *flag.FlagSet

	configPath *string
	envFile    *string
	width      *int
	height     *int
	byteOrder  *string
	validMin   *float64
	validMax   *float64
	units      *string
	colormap   *string
	minSpan    *int
	debug      *bool
}

func newCommonFlags(name string) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &commonFlags{
		fs:         fs,
		configPath: fs.String("config", "", "JSON or YAML config file"),
		envFile:    fs.String("env", ".env", "dotenv file with THERMAL_* overrides"),
		width:      fs.Int("width", 0, "frame width in pixels"),
		height:     fs.Int("height", 0, "frame height in pixels"),
		byteOrder:  fs.String("byte-order", "", "little or big"),
		validMin:   fs.Float64("valid-min", 0, "lowest plausible reading (°C)"),
		validMax:   fs.Float64("valid-max", 0, "highest plausible reading (°C)"),
		units:      fs.String("units", "", "display units: C, F or K"),
		colormap:   fs.String("colormap", "", "colour map for rendered output"),
		minSpan:    fs.Int("min-span", 0, "minimum selection size in pixels on each axis"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// parse parses args, allowing the frame path either first or last.
func (c *commonFlags) parse(args []string) (string, error) {
	var input string
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		input, args = args[0], args[1:]
	}
	if err := c.fs.Parse(args); err != nil {
		return "", err
	}
	if input == "" {
		input = c.fs.Arg(0)
	}
	if input == "" {
		return "", fmt.Errorf("%s: missing frame path", c.fs.Name())
	}
	monitoring.SetDebug(*c.debug)
	return input, nil
}

// load resolves the effective configuration: defaults, then the config
// file, then THERMAL_* environment, then explicit flags.
func (c *commonFlags) load() (*config.Config, error) {
	cfg := config.Empty()
	if *c.configPath != "" {
		loaded, err := config.Load(*c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(*c.envFile); err != nil {
		return nil, err
	}

	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = c.width
		case "height":
			cfg.Height = c.height
		case "byte-order":
			cfg.ByteOrder = c.byteOrder
		case "valid-min":
			cfg.ValidMin = c.validMin
		case "valid-max":
			cfg.ValidMax = c.validMax
		case "units":
			cfg.Units = c.units
		case "colormap":
			cfg.Colormap = c.colormap
		case "min-span":
			cfg.MinSpanPx = c.minSpan
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session is a loaded frame ready for analysis and rendering.
type session struct {
	cfg      *config.Config
	path     string
	analyzer *thermal.Analyzer
	scene    *render.Scene
}

func openSession(cfg *config.Config, fsys fsutil.FileSystem, path string) (*session, error) {
	order, err := rawgrid.ParseByteOrder(cfg.GetByteOrder())
	if err != nil {
		return nil, err
	}
	cm, err := render.LookupColormap(cfg.GetColormap())
	if err != nil {
		return nil, err
	}

	src := rawgrid.NewSource(cfg.GetWidth(), cfg.GetHeight(), order)
	src.FS = fsys
	g, err := src.Load(path)
	if err != nil {
		return nil, err
	}

	a := thermal.NewAnalyzer(g, cfg.ValidityRange())
	sum := a.Summary(cfg.DisplayOptions())
	monitoring.Logf("loaded %s: %dx%d, %d/%d valid, min=%s max=%s",
		filepath.Base(path), sum.Width, sum.Height, sum.ValidCount, sum.TotalCount,
		render.FormatTemp(sum.ValidMin, cfg.GetUnits()), render.FormatTemp(sum.ValidMax, cfg.GetUnits()))

	scene := render.NewScene(g, cfg.ValidityRange(), sum, render.Options{
		Colormap: cm,
		Units:    cfg.GetUnits(),
		WidthIn:  cfg.GetPlotWidthIn(),
		HeightIn: cfg.GetPlotHeightIn(),
	})
	return &session{cfg: cfg, path: path, analyzer: a, scene: scene}, nil
}

func handleInfo(args []string, stdout io.Writer) error {
	cf := newCommonFlags("info")
	asJSON := cf.fs.Bool("json", false, "print the summary as JSON")
	input, err := cf.parse(args)
	if err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	sess, err := openSession(cfg, fsutil.OSFileSystem{}, input)
	if err != nil {
		return err
	}

	if *asJSON {
		return render.JSON(stdout, render.NewSummaryReport(sess.scene.Summary, cfg.GetUnits()))
	}
	return render.SummaryText(stdout, sess.scene.Summary, cfg.GetUnits())
}

func handleAnalyze(args []string, stdout io.Writer) error {
	cf := newCommonFlags("analyze")
	rectFlag := cf.fs.String("rect", "", "selection corners x0,y0,x1,y1 (required)")
	out := cf.fs.String("out", "", "write the annotated heatmap (.png, .svg, .pdf or .jpg)")
	htmlOut := cf.fs.String("html", "", "write an interactive chart of the ROI (.html)")
	asJSON := cf.fs.Bool("json", false, "print the statistics as JSON")
	input, err := cf.parse(args)
	if err != nil {
		return err
	}
	if *rectFlag == "" {
		return fmt.Errorf("analyze: --rect is required")
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}

	// Validate everything the user typed before touching the frame.
	gesture, err := selection.ParseGesture(*rectFlag)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if err := gesture.Check(cfg.GetMinSpanPx()); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	rect, _ := gesture.Rect(cfg.GetMinSpanPx())

	var format string
	if *out != "" {
		if format, err = render.FormatForPath(*out); err != nil {
			return err
		}
		if err := security.ValidateOutputPath(*out); err != nil {
			return err
		}
	}
	if *htmlOut != "" {
		if err := security.ValidateOutputPath(*htmlOut, ".html", ".htm"); err != nil {
			return err
		}
	}

	fsys := fsutil.OSFileSystem{}
	sess, err := openSession(cfg, fsys, input)
	if err != nil {
		return err
	}
	res := sess.analyzer.Analyze(rect)
	scene := sess.scene.WithResult(res)

	if *asJSON {
		err = render.JSON(stdout, render.NewReport(res, cfg.GetUnits()))
	} else {
		err = render.Text(stdout, res, cfg.GetUnits())
	}
	if err != nil {
		return err
	}

	if *out != "" {
		if err := writeOutput(fsys, *out, func(w io.Writer) error { return render.Image(w, scene, format) }); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", *out)
	}
	if *htmlOut != "" {
		if err := writeOutput(fsys, *htmlOut, func(w io.Writer) error { return render.HTML(w, scene) }); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", *htmlOut)
	}
	return nil
}

func handleServe(args []string, _ io.Writer) error {
	cf := newCommonFlags("serve")
	listen := cf.fs.String("listen", "", "HTTP listen address (default from config, :8080)")
	input, err := cf.parse(args)
	if err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	addr := cfg.GetListen()
	if *listen != "" {
		addr = *listen
	}

	sess, err := openSession(cfg, fsutil.OSFileSystem{}, input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(sess.analyzer, sess.scene, server.Config{
		MinSpan: cfg.GetMinSpanPx(),
		Source:  filepath.Base(input),
	})
	if err := srv.Run(ctx, addr, cfg.GetShutdownTimeout()); err != nil {
		return err
	}
	monitoring.Logf("Graceful shutdown complete")
	return nil
}

// writeOutput renders into path through fsys, creating parent directories.
func writeOutput(fsys fsutil.FileSystem, path string, fn func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return nil
}
