package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/thermal-roi/internal/fsutil"
	"github.com/banshee-data/thermal-roi/internal/thermal"
)

func TestEmptyConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Empty()
	assert.Equal(t, 640, cfg.GetWidth())
	assert.Equal(t, 512, cfg.GetHeight())
	assert.Equal(t, "little", cfg.GetByteOrder())
	assert.Equal(t, 0.0, cfg.GetValidMin())
	assert.Equal(t, 120.0, cfg.GetValidMax())
	assert.Equal(t, 1.0, cfg.GetDisplayLowPercentile())
	assert.Equal(t, 99.0, cfg.GetDisplayHighPercentile())
	assert.Equal(t, 0.5, cfg.GetDisplayMargin())
	assert.Equal(t, 5, cfg.GetMinSpanPx())
	assert.Equal(t, "extended-blackbody", cfg.GetColormap())
	assert.Equal(t, "C", cfg.GetUnits())
	assert.Equal(t, ":8080", cfg.GetListen())
	assert.Equal(t, 10.0, cfg.GetPlotWidthIn())
	assert.Equal(t, 8.0, cfg.GetPlotHeightIn())
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
	require.NoError(t, cfg.Validate())

	assert.Equal(t, thermal.ValidityRange{Min: 0, Max: 120}, cfg.ValidityRange())
	assert.Equal(t, thermal.DefaultDisplayOptions(), cfg.DisplayOptions())
}

func TestDefaultMatchesDefaultsFile(t *testing.T) {
	t.Parallel()

	fromFile, err := Load(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), fromFile); diff != "" {
		t.Errorf("defaults file drifted from Default() (-code +file):\n%s", diff)
	}
}

func TestLoadJSONAndYAML(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/cfg/a.json", []byte(`{"width": 320, "valid_max": 80.5, "units": "F"}`), 0o644))
	require.NoError(t, mfs.WriteFile("/cfg/b.yaml", []byte("width: 320\nvalid_max: 80.5\nunits: F\nbyte_order: big\n"), 0o644))

	for _, path := range []string{"/cfg/a.json", "/cfg/b.yaml"} {

		path := path
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadFS(mfs, path)
			require.NoError(t, err)
			assert.Equal(t, 320, cfg.GetWidth())
			assert.Equal(t, 512, cfg.GetHeight(), "unset fields keep defaults")
			assert.Equal(t, 80.5, cfg.GetValidMax())
			assert.Equal(t, "F", cfg.GetUnits())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/bad.json", []byte(`{"width": "wide"}`), 0o644))
	require.NoError(t, mfs.WriteFile("/invalid.json", []byte(`{"valid_min": 50, "valid_max": 10}`), 0o644))
	require.NoError(t, mfs.WriteFile("/big.json", []byte(strings.Repeat(" ", maxFileSize+1)), 0o644))
	require.NoError(t, mfs.WriteFile("/conf.toml", []byte(``), 0o644))

	tests := []struct {
		path string
		want string
	}{
		{"/conf.toml", "extension"},
		{"/missing.json", "failed to stat"},
		{"/big.json", "too large"},
		{"/bad.json", "failed to parse"},
		{"/invalid.json", "invalid configuration"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			_, err := LoadFS(mfs, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = ptrInt(0) }},
		{"bad byte order", func(c *Config) { c.ByteOrder = ptrString("middle") }},
		{"inverted range", func(c *Config) { c.ValidMin = ptrFloat64(130) }},
		{"percentiles crossed", func(c *Config) { c.DisplayLowPercentile = ptrFloat64(99) }},
		{"percentile above 100", func(c *Config) { c.DisplayHighPercentile = ptrFloat64(101) }},
		{"negative margin", func(c *Config) { c.DisplayMargin = ptrFloat64(-1) }},
		{"negative span", func(c *Config) { c.MinSpanPx = ptrInt(-2) }},
		{"unknown units", func(c *Config) { c.Units = ptrString("R") }},
		{"zero plot width", func(c *Config) { c.PlotWidthIn = ptrFloat64(0) }},
		{"bad timeout", func(c *Config) { c.ShutdownTimeout = ptrString("soon") }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyLookup(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"THERMAL_WIDTH":      "160",
		"THERMAL_VALID_MAX":  "90.5",
		"THERMAL_UNITS":      "K",
		"THERMAL_LISTEN":     "",
		"UNRELATED_VARIABLE": "x",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Empty()
	require.NoError(t, cfg.applyLookup(lookup))
	assert.Equal(t, 160, cfg.GetWidth())
	assert.Equal(t, 90.5, cfg.GetValidMax())
	assert.Equal(t, "K", cfg.GetUnits())
	assert.Equal(t, ":8080", cfg.GetListen(), "empty values are ignored")

	env["THERMAL_HEIGHT"] = "tall"
	assert.Error(t, Empty().applyLookup(lookup))
}

func TestApplyEnvDotenvFile(t *testing.T) {
	// Not parallel: mutates the process environment.
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("THERMAL_MIN_SPAN_PX=9\nTHERMAL_COLORMAP=kindlmann\n"), 0o600))
	t.Setenv("THERMAL_COLORMAP", "smooth-blue-red")
	t.Cleanup(func() { os.Unsetenv("THERMAL_MIN_SPAN_PX") })

	cfg := Empty()
	require.NoError(t, cfg.ApplyEnv(envFile))
	assert.Equal(t, 9, cfg.GetMinSpanPx())
	assert.Equal(t, "smooth-blue-red", cfg.GetColormap(), "process environment wins over .env")

	require.NoError(t, Empty().ApplyEnv(filepath.Join(dir, "absent.env")))
}
