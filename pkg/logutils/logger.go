// Package logutils builds the zerolog logger the rifted commands share.
package logutils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a logger that writes JSON to the given file, creating parent
// directories as needed. An empty file falls back to stdout; the read command
// always supplies a file because the TUI owns the terminal while a book is
// open.
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	writer := os.Stdout
	if file != "" {
		logsDir := filepath.Dir(file)
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		// Truncate per run; one reading session per log file.
		osFile, err := os.Create(file)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = osFile.Close() }
		writer = osFile
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}
