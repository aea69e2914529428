package tempo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds engine-wide defaults. Zero values are replaced by the defaults
// of DefaultConfig when loaded from a file.
type Config struct {
	// FPS caps delivered frames per second; 0 delivers every tick.
	FPS int `yaml:"fps" toml:"fps" json:"fps"`
	// LagThreshold and AdjustedLag configure lag smoothing: a single step
	// longer than LagThreshold seconds advances time by AdjustedLag instead.
	LagThreshold float64 `yaml:"lag_threshold" toml:"lag_threshold" json:"lag_threshold"`
	AdjustedLag  float64 `yaml:"adjusted_lag" toml:"adjusted_lag" json:"adjusted_lag"`
	// AutoSleep is the number of idle frames after which the ticker sleeps.
	// 0 disables auto-sleep.
	AutoSleep       int     `yaml:"auto_sleep" toml:"auto_sleep" json:"auto_sleep"`
	DefaultEase     string  `yaml:"default_ease" toml:"default_ease" json:"default_ease"`
	DefaultDuration float64 `yaml:"default_duration" toml:"default_duration" json:"default_duration"`
	TimeScale       float64 `yaml:"time_scale" toml:"time_scale" json:"time_scale"`
	Debug           bool    `yaml:"debug" toml:"debug" json:"debug"`
	LogLevel        string  `yaml:"log_level" toml:"log_level" json:"log_level"`
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		LagThreshold:    0.5,
		AdjustedLag:     0.033,
		AutoSleep:       120,
		DefaultEase:     "linear",
		DefaultDuration: 0.5,
		TimeScale:       1,
		LogLevel:        "warn",
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) file over the
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes data in the given format ("yaml", "yml" or "toml")
// over the defaults.
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode yaml: %w", err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("decode toml: unknown key %q", undecoded[0].String())
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}
	return cfg, nil
}

// Normalize replaces invalid values with defaults and reports what it
// changed.
func (c Config) Normalize() (Config, []string) {
	def := DefaultConfig()
	var notes []string
	if c.FPS < 0 {
		notes = append(notes, fmt.Sprintf("fps %d < 0, using 0", c.FPS))
		c.FPS = 0
	}
	if c.LagThreshold < 0 || math.IsNaN(c.LagThreshold) {
		notes = append(notes, fmt.Sprintf("lag_threshold %v invalid, using %v", c.LagThreshold, def.LagThreshold))
		c.LagThreshold = def.LagThreshold
	}
	if c.AdjustedLag < 0 || math.IsNaN(c.AdjustedLag) {
		notes = append(notes, fmt.Sprintf("adjusted_lag %v invalid, using %v", c.AdjustedLag, def.AdjustedLag))
		c.AdjustedLag = def.AdjustedLag
	}
	if c.AutoSleep < 0 {
		notes = append(notes, fmt.Sprintf("auto_sleep %d < 0, using 0", c.AutoSleep))
		c.AutoSleep = 0
	}
	if c.DefaultDuration < 0 || math.IsNaN(c.DefaultDuration) {
		notes = append(notes, fmt.Sprintf("default_duration %v invalid, using %v", c.DefaultDuration, def.DefaultDuration))
		c.DefaultDuration = def.DefaultDuration
	}
	if c.TimeScale <= 0 || math.IsNaN(c.TimeScale) || math.IsInf(c.TimeScale, 0) {
		notes = append(notes, fmt.Sprintf("time_scale %v invalid, using 1", c.TimeScale))
		c.TimeScale = 1
	}
	if c.DefaultEase == "" {
		c.DefaultEase = def.DefaultEase
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return c, notes
}
