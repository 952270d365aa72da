// Package logging defines the structured-logging interface used across the
// project and its slog and zerolog backends.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "user registered", "user_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// ValidBackend reports whether New knows the backend name.
func ValidBackend(name string) bool {
	return name == BackendSlog || name == BackendZerolog
}

// New builds a Logger for the named backend writing JSON lines to w, which
// defaults to stdout. Names are checked with ValidBackend at config time;
// anything else gets slog.
func New(backend string, w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	if backend == BackendZerolog {
		return NewZerologLogger(zerolog.New(w).With().Timestamp().Logger())
	}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil)))
}
