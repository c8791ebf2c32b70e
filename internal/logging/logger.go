// Package logging defines the structured-logging interface used across the
// storefront client together with its slog and zap backends.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "cart updated", "items", n, "total", total)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Options selects and tunes a Logger backend.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Format is "text" or "json".
	Format string
	// Backend is BackendSlog or BackendZap.
	Backend string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds a Logger for the given options.
func New(opts Options) (Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSlog:
		return newSlogLogger(out, opts.Level, opts.Format), nil
	case BackendZap:
		return newZapLogger(out, opts.Level, opts.Format), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// ParseLevel maps a textual level to slog.Level; unknown values map to Info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
