// Package logging builds the zerolog logger shared by the CLI and pipeline.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every event.
const ServiceName = "legacymig"

// Options holds logger configuration.
type Options struct {
	Level  string
	Format string // json or console
	Output io.Writer
}

// New creates a logger. The level applies to this logger only.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var zl zerolog.Logger
	if opts.Format == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		})
	} else {
		zl = zerolog.New(out)
	}

	return zl.Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
