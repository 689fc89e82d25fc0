// Package logging builds the zerolog loggers used by the command and the search.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger with the given level writing to output. Format "console" gives
// human readable lines, anything else JSON.
func New(level string, output io.Writer, format string) zerolog.Logger {
	if format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(output).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}
