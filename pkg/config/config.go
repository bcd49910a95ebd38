// Package config loads the flattree viewer configuration (flattree.yaml)
// with graceful degradation: a missing file yields defaults, a corrupt
// file is an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfig overrides the config file location.
const EnvConfig = "FLATTREE_CONFIG"

// EnvData overrides the data file path from the config.
const EnvData = "FLATTREE_DATA"

// Config is the root of flattree.yaml.
type Config struct {
	// Animation controls row transition timing.
	Animation AnimationConfig `yaml:"animation,omitempty"`

	// Data selects the tree data source.
	Data DataConfig `yaml:"data,omitempty"`
}

// AnimationConfig controls per-row transitions.
type AnimationConfig struct {
	// DurationMS is the transition length in milliseconds (default: 220).
	DurationMS int `yaml:"duration_ms,omitempty"`

	// Easing names the progress curve: "ease-out-cubic" (default),
	// "linear" or "ease-in-out-sine".
	Easing string `yaml:"easing,omitempty"`

	// FPS is the tick rate while transitions are in flight (default: 30).
	FPS int `yaml:"fps,omitempty"`
}

// DataConfig selects where the tree comes from.
type DataConfig struct {
	// Source is "json" (default) or "sqlite".
	Source string `yaml:"source,omitempty"`

	// Path is the data file to load.
	Path string `yaml:"path"`

	// Table is the SQLite table name (default: nodes). Ignored for JSON.
	Table string `yaml:"table,omitempty"`

	// Watch reloads the tree when the data file changes (default: true).
	Watch *bool `yaml:"watch,omitempty"`

	// DebounceMS coalesces rapid file changes (default: 200).
	DebounceMS int `yaml:"debounce_ms,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	watch := true
	return Config{
		Animation: AnimationConfig{
			DurationMS: 220,
			Easing:     "ease-out-cubic",
			FPS:        30,
		},
		Data: DataConfig{
			Source:     "json",
			Table:      "nodes",
			Watch:      &watch,
			DebounceMS: 200,
		},
	}
}

// Load reads the config at path, falling back to defaults when the file
// does not exist. Unset fields are filled from defaults; the FLATTREE_DATA
// environment variable overrides the data path last.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	fillDefaults(&cfg)
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// fillDefaults replaces zero values with defaults after a partial file.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Animation.DurationMS <= 0 {
		cfg.Animation.DurationMS = def.Animation.DurationMS
	}
	if cfg.Animation.Easing == "" {
		cfg.Animation.Easing = def.Animation.Easing
	}
	if cfg.Animation.FPS <= 0 {
		cfg.Animation.FPS = def.Animation.FPS
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = def.Data.Source
	}
	if cfg.Data.Table == "" {
		cfg.Data.Table = def.Data.Table
	}
	if cfg.Data.Watch == nil {
		cfg.Data.Watch = def.Data.Watch
	}
	if cfg.Data.DebounceMS <= 0 {
		cfg.Data.DebounceMS = def.Data.DebounceMS
	}
}

func applyEnv(cfg *Config) {
	if path := os.Getenv(EnvData); path != "" {
		cfg.Data.Path = path
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "json", "sqlite":
	default:
		return fmt.Errorf("data.source must be json or sqlite, got %q", c.Data.Source)
	}
	if c.Animation.FPS > 120 {
		return fmt.Errorf("animation.fps %d is above the 120 cap", c.Animation.FPS)
	}
	return nil
}

// Duration returns the animation duration as a time.Duration.
func (a AnimationConfig) Duration() time.Duration {
	return time.Duration(a.DurationMS) * time.Millisecond
}

// FrameInterval returns the tick interval derived from FPS.
func (a AnimationConfig) FrameInterval() time.Duration {
	fps := a.FPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}

// Debounce returns the watch debounce as a time.Duration.
func (d DataConfig) Debounce() time.Duration {
	return time.Duration(d.DebounceMS) * time.Millisecond
}

// WatchEnabled reports whether file watching is on.
func (d DataConfig) WatchEnabled() bool {
	return d.Watch == nil || *d.Watch
}

// Path resolves the config file location: FLATTREE_CONFIG wins, then the
// given flag value, then a flattree.yaml discovered walking up from the
// working directory, then ./flattree.yaml.
func Path(flagValue string) string {
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	if flagValue != "" {
		return flagValue
	}
	if found, ok := DiscoverFromWorkingDir(); ok {
		return found
	}
	return ConfigFileName
}
