package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	return criterio.ValidateStruct(
		criterio.Run("reader.chapters_per_window", c.Reader.ChaptersPerWindow, atLeast(1)),
		criterio.Run("reader.buffer_capacity", c.Reader.BufferCapacity, atLeast(1)),
		criterio.Run("reader.nav_queue_timeout", c.Reader.NavQueueTimeout, nonNegative),
		criterio.Run("reader.nav_poll_interval", c.Reader.NavPollInterval, nonNegative),
		criterio.Run("reader.autosave_interval", c.Reader.AutosaveInterval, nonNegative),
		criterio.Run("tui.swipe_min_distance", c.TUI.SwipeMinDistance, atLeast(1)),
		criterio.Run("tui.swipe_min_velocity", c.TUI.SwipeMinVelocity, atLeast(1)),
		c.validateWatermarks(),
		c.validateLogLevel(),
	)
}

// ValidateDeep performs validation including file accessibility checks. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errs criterio.FieldErrorsBuilder
	if err := validateConfigFile(configPath); err != nil {
		return err
	}
	for i, path := range c.Library.Paths {
		if err := isDirectoryOrNotExist(path); err != nil {
			errs = errs.Append(fmt.Sprintf("library.paths[%d]", i), err)
		}
	}
	return errs.ToError()
}

// validateWatermarks checks that the shift triggers bracket a middle band.
// With capacity < 3 the buffer has no middle band and shift advice is
// disabled, so the watermarks are not constrained.
func (c *Config) validateWatermarks() error {
	var errs criterio.FieldErrorsBuilder

	low, high := c.Reader.Watermarks()
	if low < 0 {
		errs = errs.Append("reader.low_watermark", fmt.Errorf("must be >= 0, got %d", low))
	}
	if high > c.Reader.BufferCapacity-1 {
		errs = errs.Append("reader.high_watermark", fmt.Errorf("must be < buffer_capacity (%d), got %d", c.Reader.BufferCapacity, high))
	}
	if c.Reader.BufferCapacity >= 3 && low >= high {
		errs = errs.Append("reader.low_watermark", fmt.Errorf("must be below high_watermark (%d), got %d", high, low))
	}

	return errs.ToError()
}

func (c *Config) validateLogLevel() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
		return nil
	default:
		return criterio.NewFieldErrors("logging.level", fmt.Errorf("unknown level %q", c.Logging.Level))
	}
}

func atLeast(minimum int) func(int) error {
	return func(v int) error {
		if v < minimum {
			return fmt.Errorf("must be at least %d, got %d", minimum, v)
		}
		return nil
	}
}

func nonNegative(d Duration) error {
	if d < 0 {
		return fmt.Errorf("must not be negative, got %s", d.Std())
	}
	return nil
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
