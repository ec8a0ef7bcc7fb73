package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger. verbose enables debug output; ffmpeg's
// own output is only shown at trace level, which VIDEOMAKER_TRACE turns on.
func Init(verbose bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	zerolog.SetGlobalLevel(Level(verbose, os.Getenv("VIDEOMAKER_TRACE") != ""))

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    false,
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return log.Logger
}

// Level picks the global level for the given flags
func Level(verbose, trace bool) zerolog.Level {
	switch {
	case trace:
		return zerolog.TraceLevel
	case verbose:
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// NewLogger creates a new logger with optional writers
func NewLogger(writers ...io.Writer) zerolog.Logger {
	if len(writers) == 0 {
		return log.Logger
	}

	if len(writers) == 1 {
		return zerolog.New(writers[0]).With().Timestamp().Logger()
	}

	multi := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(multi).With().Timestamp().Logger()
}

// WithComponent creates a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
