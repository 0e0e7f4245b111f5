// internal/logging/logger.go
// Structured logging setup, adopted from zerolog the way the rest of the
// ecosystem uses it rather than the plain stdlib logger.

package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New configures a zerolog.Logger based on the running environment. In
// production it emits structured JSON lines suitable for a log collector;
// in any other environment it writes a human-readable console stream.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var writer = os.Stdout
	logger := zerolog.New(writer).With().Timestamp().Str("service", "eventengine").Logger()

	if env != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen})
	}

	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}
	return logger.Level(level)
}
