// Package config handles configuration loading and validation for rifted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML string parsing ("2s", "50ms").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the application configuration.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Reader  ReaderConfig  `yaml:"reader"`
	TUI     TUIConfig     `yaml:"tui"`
	Logging LoggingConfig `yaml:"logging"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// LibraryConfig configures book discovery.
type LibraryConfig struct {
	// Paths are directories scanned for books with **/*.md globs.
	Paths []string `yaml:"paths"`
}

// ReaderConfig configures the pagination core.
type ReaderConfig struct {
	ChaptersPerWindow int `yaml:"chapters_per_window"`
	BufferCapacity    int `yaml:"buffer_capacity"`

	// NavQueueTimeout bounds how long a navigation request may wait for a
	// surface to become ready; NavPollInterval is the re-check cadence.
	NavQueueTimeout Duration `yaml:"nav_queue_timeout"`
	NavPollInterval Duration `yaml:"nav_poll_interval"`

	// LowWatermark and HighWatermark are the buffer slot indices that trigger
	// backward and forward shifts. nil means "derive from capacity": high is
	// capacity-2 and low is 1, clamped so low stays below high wherever the
	// capacity leaves room for a middle band.
	LowWatermark  *int `yaml:"low_watermark,omitempty"`
	HighWatermark *int `yaml:"high_watermark,omitempty"`

	// Prewarm loads every buffered window eagerly. When false, windows load
	// on activation or on a streaming hint from the active surface. nil
	// means enabled.
	Prewarm *bool `yaml:"prewarm,omitempty"`

	// AutosaveInterval is the periodic position save cadence; 0 disables it.
	AutosaveInterval Duration `yaml:"autosave_interval"`
}

// PrewarmEnabled reports whether every buffered window is loaded eagerly.
func (r ReaderConfig) PrewarmEnabled() bool {
	return r.Prewarm == nil || *r.Prewarm
}

// Watermarks returns the shift trigger slots. Call after defaults are
// applied; unset pointers read as zero.
func (r ReaderConfig) Watermarks() (low, high int) {
	if r.LowWatermark != nil {
		low = *r.LowWatermark
	}
	if r.HighWatermark != nil {
		high = *r.HighWatermark
	}
	return low, high
}

// TUIConfig configures the reading interface.
type TUIConfig struct {
	// Theme selects the color palette (tokyo-night, gruvbox).
	Theme string `yaml:"theme"`

	// Style is a glamour style name (dark, light, dracula, notty) or
	// "theme" to derive one from the active palette.
	Style string `yaml:"style"`

	// SwipeMinDistance (cells) and SwipeMinVelocity (cells/second) gate
	// horizontal swipe recognition.
	SwipeMinDistance int `yaml:"swipe_min_distance"`
	SwipeMinVelocity int `yaml:"swipe_min_velocity"`
}

// LoggingConfig configures the log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty = <data-dir>/rifted.log
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Library: LibraryConfig{
			Paths: []string{filepath.Join(home, "books")},
		},
		Reader: ReaderConfig{
			ChaptersPerWindow: 5,
			BufferCapacity:    5,
			NavQueueTimeout:   Duration(2 * time.Second),
			NavPollInterval:   Duration(50 * time.Millisecond),
			AutosaveInterval:  Duration(30 * time.Second),
		},
		TUI: TUIConfig{
			Theme:            "tokyo-night",
			Style:            "dark",
			SwipeMinDistance: 3,
			SwipeMinVelocity: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided
// dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if len(c.Library.Paths) == 0 {
		c.Library.Paths = defaults.Library.Paths
	}
	for i, p := range c.Library.Paths {
		c.Library.Paths[i] = expandHome(p)
	}

	if c.Reader.ChaptersPerWindow == 0 {
		c.Reader.ChaptersPerWindow = defaults.Reader.ChaptersPerWindow
	}
	if c.Reader.BufferCapacity == 0 {
		c.Reader.BufferCapacity = defaults.Reader.BufferCapacity
	}
	if c.Reader.NavQueueTimeout == 0 {
		c.Reader.NavQueueTimeout = defaults.Reader.NavQueueTimeout
	}
	if c.Reader.NavPollInterval == 0 {
		c.Reader.NavPollInterval = defaults.Reader.NavPollInterval
	}
	if c.Reader.HighWatermark == nil {
		high := c.Reader.BufferCapacity - 2
		if high < 0 {
			high = 0
		}
		c.Reader.HighWatermark = &high
	}
	if c.Reader.LowWatermark == nil {
		// Small capacities leave no room for low=1; slide low under high.
		low := 1
		if low >= *c.Reader.HighWatermark {
			low = *c.Reader.HighWatermark - 1
		}
		if low < 0 {
			low = 0
		}
		c.Reader.LowWatermark = &low
	}

	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.Style == "" {
		c.TUI.Style = defaults.TUI.Style
	}
	if c.TUI.SwipeMinDistance == 0 {
		c.TUI.SwipeMinDistance = defaults.TUI.SwipeMinDistance
	}
	if c.TUI.SwipeMinVelocity == 0 {
		c.TUI.SwipeMinVelocity = defaults.TUI.SwipeMinVelocity
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// LogFile returns the configured log file path, or the data-dir default.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	return filepath.Join(c.DataDir, "rifted.log")
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
