package tempo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_YAML(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
fps: 30
default_ease: power2.out
time_scale: 2
debug: true
`), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "power2.out", cfg.DefaultEase)
	assert.Equal(t, 2.0, cfg.TimeScale)
	assert.True(t, cfg.Debug)
	// unset keys keep their defaults
	assert.Equal(t, 0.5, cfg.LagThreshold)
	assert.Equal(t, 120, cfg.AutoSleep)
}

func TestParseConfig_TOML(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
auto_sleep = 0
default_duration = 1.5
log_level = "debug"
`), "toml")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.AutoSleep)
	assert.Equal(t, 1.5, cfg.DefaultDuration)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil, "yml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_Errors(t *testing.T) {
	cases := map[string]struct {
		data   string
		format string
	}{
		"unknown yaml key": {"fpss: 30", "yaml"},
		"bad yaml":         {"fps: [", "yaml"},
		"unknown toml key": {"speed = 2", "toml"},
		"bad toml":         {"fps = ", "toml"},
		"format":           {"{}", "json5"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.data), tc.format)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tempo.TOML")
	require.NoError(t, os.WriteFile(path, []byte("fps = 60\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.FPS)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(dir, "tempo.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fps: nope\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, bad)
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{FPS: -1, LagThreshold: -1, AdjustedLag: -1, AutoSleep: -5, DefaultDuration: -2}
	got, notes := cfg.Normalize()
	assert.Len(t, notes, 6)
	assert.Equal(t, 0, got.FPS)
	assert.Equal(t, 0.5, got.LagThreshold)
	assert.Equal(t, 0.033, got.AdjustedLag)
	assert.Equal(t, 0, got.AutoSleep)
	assert.Equal(t, 0.5, got.DefaultDuration)
	assert.Equal(t, 1.0, got.TimeScale)
	assert.Equal(t, "linear", got.DefaultEase)
	assert.Equal(t, "warn", got.LogLevel)

	_, notes = DefaultConfig().Normalize()
	assert.Empty(t, notes)
}

func TestEngineAppliesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultEase = "quad.in"
	cfg.TimeScale = 2
	e := quietEngine(WithConfig(cfg))
	assert.Equal(t, "quad.in", e.Eases().DefaultName())
	assert.Equal(t, 2.0, e.TimeScale())

	s := &sprite{}
	e.To(s, Props{"X": 100}, 1)
	e.Tick(0.25)
	assert.InDelta(t, 25, s.X, 1e-9)
}
