// Package logger wraps log/slog with request-scoped fields.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey string

const requestIDKey contextKey = "request_id"

var base = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init configures the process-wide logger. Development gets readable text at
// debug level, everything else JSON at info level.
func Init(env string) *slog.Logger {
	return InitWriter(env, os.Stdout)
}

// InitWriter is Init with an explicit destination.
func InitWriter(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "" || env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	base = slog.New(handler)
	slog.SetDefault(base)
	return base
}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the base logger enriched with the request id.
func FromContext(ctx context.Context) *slog.Logger {
	if id := RequestID(ctx); id != "" {
		return base.With("request_id", id)
	}
	return base
}
