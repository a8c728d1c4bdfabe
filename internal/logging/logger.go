// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, so every line written while
// serving one upload or export can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const ctxKeyClientIP contextKey = "client_ip"

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// WithClientIP stores the caller's address for later log entries.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIP returns the address stored by WithClientIP, or "".
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// FromContext returns the default logger enriched with the chi request id
// and client IP carried by ctx, when present.
//
// Usage:
//
//	logging.FromContext(r.Context()).Info("spreadsheet staged", "file", name)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if ip := ClientIP(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}

	return logger
}
