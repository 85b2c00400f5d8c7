// Package logging sets up the engine's structured logger and the
// contextual-logger helpers every subsystem derives its own scoped logger
// from (the teacher's "withXContext" pattern).
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. pretty enables a human-readable console
// writer (for `waycored serve --log-pretty`); production runs emit plain
// JSON lines to w.
func New(w io.Writer, level zerolog.Level, pretty bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// WithRun tags every log line for one dispatch-loop run with a
// correlation id (§9, supplemented: "google/uuid additionally names each
// dispatch-loop run for log correlation").
func WithRun(l zerolog.Logger, runID string) zerolog.Logger {
	return l.With().Str("run_id", runID).Logger()
}

// WithClient adds the per-connection fields every client-scoped log line
// carries.
func WithClient(l zerolog.Logger, clientID int64) zerolog.Logger {
	return l.With().Int64("client", clientID).Logger()
}

// WithSurface adds the fields identifying one surface within its client's
// logger.
func WithSurface(l zerolog.Logger, surfaceID uint32) zerolog.Logger {
	return l.With().Uint32("surface", surfaceID).Logger()
}
