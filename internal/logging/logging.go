// Package logging installs the process-wide slog logger.
//
// Call sites keep using log/slog with the keys from the config package; records
// are rendered by zerolog, as JSON in production or as colored console lines
// during development.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls Setup.
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // json or console
	Caller bool
	Output io.Writer
}

// Setup builds the zerolog backend, wraps it in a slog.Handler and installs it as
// the slog default. It returns the logger for components that want it injected.
func Setup(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "msg"

	output := opts.Output
	if opts.Format == "console" {
		output = zerolog.ConsoleWriter{Out: opts.Output, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(output).Level(parseLevel(opts.Level)).With().Timestamp().Logger()
	if opts.Caller {
		zl = zl.With().Caller().Logger()
	}

	logger := slog.New(NewHandler(zl))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
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
