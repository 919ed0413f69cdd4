package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/thermal-roi/internal/fsutil"
	"github.com/banshee-data/thermal-roi/internal/rawgrid"
	"github.com/banshee-data/thermal-roi/internal/thermal"
	"github.com/banshee-data/thermal-roi/internal/units"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/thermal.defaults.json"

// EnvPrefix prefixes every environment override, e.g. THERMAL_VALID_MAX.
const EnvPrefix = "THERMAL_"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds every tunable of the analyzer. Fields are pointers so that a
// partial file leaves the rest unset; the Get* methods supply defaults.
type Config struct {
	// Frame layout
	Width     *int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height    *int    `json:"height,omitempty" yaml:"height,omitempty"`
	ByteOrder *string `json:"byte_order,omitempty" yaml:"byte_order,omitempty"`

	// Validity range in degrees Celsius
	ValidMin *float64 `json:"valid_min,omitempty" yaml:"valid_min,omitempty"`
	ValidMax *float64 `json:"valid_max,omitempty" yaml:"valid_max,omitempty"`

	// Display scaling
	DisplayLowPercentile  *float64 `json:"display_low_percentile,omitempty" yaml:"display_low_percentile,omitempty"`
	DisplayHighPercentile *float64 `json:"display_high_percentile,omitempty" yaml:"display_high_percentile,omitempty"`
	DisplayMargin         *float64 `json:"display_margin,omitempty" yaml:"display_margin,omitempty"`
	Colormap              *string  `json:"colormap,omitempty" yaml:"colormap,omitempty"`
	Units                 *string  `json:"units,omitempty" yaml:"units,omitempty"`
	PlotWidthIn           *float64 `json:"plot_width_in,omitempty" yaml:"plot_width_in,omitempty"`
	PlotHeightIn          *float64 `json:"plot_height_in,omitempty" yaml:"plot_height_in,omitempty"`

	// Selection
	MinSpanPx *int `json:"min_span_px,omitempty" yaml:"min_span_px,omitempty"`

	// HTTP server
	Listen          *string `json:"listen,omitempty" yaml:"listen,omitempty"`
	ShutdownTimeout *string `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"` // duration string like "5s"
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	c := Empty()
	return &Config{
		Width:                 ptrInt(c.GetWidth()),
		Height:                ptrInt(c.GetHeight()),
		ByteOrder:             ptrString(c.GetByteOrder()),
		ValidMin:              ptrFloat64(c.GetValidMin()),
		ValidMax:              ptrFloat64(c.GetValidMax()),
		DisplayLowPercentile:  ptrFloat64(c.GetDisplayLowPercentile()),
		DisplayHighPercentile: ptrFloat64(c.GetDisplayHighPercentile()),
		DisplayMargin:         ptrFloat64(c.GetDisplayMargin()),
		Colormap:              ptrString(c.GetColormap()),
		Units:                 ptrString(c.GetUnits()),
		PlotWidthIn:           ptrFloat64(c.GetPlotWidthIn()),
		PlotHeightIn:          ptrFloat64(c.GetPlotHeightIn()),
		MinSpanPx:             ptrInt(c.GetMinSpanPx()),
		Listen:                ptrString(c.GetListen()),
		ShutdownTimeout:       ptrString("5s"),
	}
}

// Load reads a configuration file from disk.
func Load(path string) (*Config, error) {
	return LoadFS(fsutil.OSFileSystem{}, path)
}

// LoadFS reads a .json, .yaml or .yml configuration file through fsys. The
// file must be under 1MB. Omitted fields keep their defaults.
func LoadFS(fsys fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv loads envFile (when it exists) into the process environment with
// godotenv, then overrides fields from THERMAL_* variables. Variables that
// are already set in the environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}
	return c.applyLookup(os.LookupEnv)
}

func (c *Config) applyLookup(lookup func(string) (string, bool)) error {
	ints := map[string]**int{
		"WIDTH":       &c.Width,
		"HEIGHT":      &c.Height,
		"MIN_SPAN_PX": &c.MinSpanPx,
	}
	floats := map[string]**float64{
		"VALID_MIN":               &c.ValidMin,
		"VALID_MAX":               &c.ValidMax,
		"DISPLAY_LOW_PERCENTILE":  &c.DisplayLowPercentile,
		"DISPLAY_HIGH_PERCENTILE": &c.DisplayHighPercentile,
		"DISPLAY_MARGIN":          &c.DisplayMargin,
		"PLOT_WIDTH_IN":           &c.PlotWidthIn,
		"PLOT_HEIGHT_IN":          &c.PlotHeightIn,
	}
	strs := map[string]**string{
		"BYTE_ORDER":       &c.ByteOrder,
		"COLORMAP":         &c.Colormap,
		"UNITS":            &c.Units,
		"LISTEN":           &c.Listen,
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
	}

	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, v, err)
			}
			*dst = ptrInt(n)
		}
	}
	for key, dst := range floats {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, v, err)
			}
			*dst = ptrFloat64(f)
		}
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = ptrString(v)
		}
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.GetWidth() <= 0 || c.GetHeight() <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.GetWidth(), c.GetHeight())
	}
	if _, err := rawgrid.ParseByteOrder(c.GetByteOrder()); err != nil {
		return err
	}
	if err := c.ValidityRange().Validate(); err != nil {
		return err
	}

	lo, hi := c.GetDisplayLowPercentile(), c.GetDisplayHighPercentile()
	if lo < 0 || hi > 100 || lo >= hi {
		return fmt.Errorf("display percentiles must satisfy 0 <= low < high <= 100, got %v and %v", lo, hi)
	}
	if m := c.GetDisplayMargin(); m < 0 || math.IsNaN(m) {
		return fmt.Errorf("display_margin must be non-negative, got %v", m)
	}
	if c.GetMinSpanPx() < 0 {
		return fmt.Errorf("min_span_px must be non-negative, got %d", c.GetMinSpanPx())
	}
	if !units.IsValid(c.GetUnits()) {
		return fmt.Errorf("invalid units %q, must be one of: %s", c.GetUnits(), units.GetValidUnitsString())
	}
	if c.GetPlotWidthIn() <= 0 || c.GetPlotHeightIn() <= 0 {
		return fmt.Errorf("plot size must be positive, got %vx%v in", c.GetPlotWidthIn(), c.GetPlotHeightIn())
	}
	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(*c.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
	}
	return nil
}

// ValidityRange returns the configured range of plausible readings.
func (c *Config) ValidityRange() thermal.ValidityRange {
	return thermal.ValidityRange{Min: c.GetValidMin(), Max: c.GetValidMax()}
}

// DisplayOptions returns the colour scale fitting options.
func (c *Config) DisplayOptions() thermal.DisplayOptions {
	return thermal.DisplayOptions{
		LowPercentile:  c.GetDisplayLowPercentile(),
		HighPercentile: c.GetDisplayHighPercentile(),
		Margin:         c.GetDisplayMargin(),
	}
}

func (c *Config) GetWidth() int {
	if c.Width == nil {
		return 640
	}
	return *c.Width
}

func (c *Config) GetHeight() int {
	if c.Height == nil {
		return 512
	}
	return *c.Height
}

func (c *Config) GetByteOrder() string {
	if c.ByteOrder == nil || *c.ByteOrder == "" {
		return "little"
	}
	return *c.ByteOrder
}

func (c *Config) GetValidMin() float64 {
	if c.ValidMin == nil {
		return 0.0
	}
	return *c.ValidMin
}

func (c *Config) GetValidMax() float64 {
	if c.ValidMax == nil {
		return 120.0
	}
	return *c.ValidMax
}

func (c *Config) GetDisplayLowPercentile() float64 {
	if c.DisplayLowPercentile == nil {
		return 1
	}
	return *c.DisplayLowPercentile
}

func (c *Config) GetDisplayHighPercentile() float64 {
	if c.DisplayHighPercentile == nil {
		return 99
	}
	return *c.DisplayHighPercentile
}

func (c *Config) GetDisplayMargin() float64 {
	if c.DisplayMargin == nil {
		return 0.5
	}
	return *c.DisplayMargin
}

func (c *Config) GetColormap() string {
	if c.Colormap == nil || *c.Colormap == "" {
		return "extended-blackbody"
	}
	return *c.Colormap
}

func (c *Config) GetUnits() string {
	if c.Units == nil || *c.Units == "" {
		return units.Celsius
	}
	return *c.Units
}

func (c *Config) GetPlotWidthIn() float64 {
	if c.PlotWidthIn == nil {
		return 10
	}
	return *c.PlotWidthIn
}

func (c *Config) GetPlotHeightIn() float64 {
	if c.PlotHeightIn == nil {
		return 8
	}
	return *c.PlotHeightIn
}

func (c *Config) GetMinSpanPx() int {
	if c.MinSpanPx == nil {
		return 5
	}
	return *c.MinSpanPx
}

func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetShutdownTimeout parses and returns the ShutdownTimeout as a time.Duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}
