package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.applyDefaults()
	return cfg
}

func TestValidate_Defaults_pass(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())
}

func TestValidate_ChaptersPerWindowBelowOne_fails(t *testing.T) {
	cfg := validConfig(t)
	cfg.Reader.ChaptersPerWindow = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapters_per_window")
}

func TestValidate_BufferCapacityBelowOne_fails(t *testing.T) {
	cfg := validConfig(t)
	cfg.Reader.BufferCapacity = -3

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer_capacity")
}

func TestValidate_WatermarkInversion_fails(t *testing.T) {
	cfg := validConfig(t)
	cfg.Reader.LowWatermark = intp(4)
	cfg.Reader.HighWatermark = intp(3)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "low_watermark")
}

func TestValidate_TinyCapacitySkipsWatermarkBand(t *testing.T) {
	cfg := validConfig(t)
	cfg.Reader.BufferCapacity = 1
	cfg.Reader.LowWatermark = intp(0)
	cfg.Reader.HighWatermark = intp(0)

	require.NoError(t, cfg.Validate())
}

func TestValidate_NegativeTimeout_fails(t *testing.T) {
	cfg := validConfig(t)
	cfg.Reader.NavQueueTimeout = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nav_queue_timeout")
}

func TestValidate_UnknownLogLevel_fails(t *testing.T) {
	cfg := validConfig(t)
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidateDeep_LibraryPathIsFile_fails(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(cfg.DataDir, "book.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.Library.Paths = []string{file}

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library.paths[0]")
}
