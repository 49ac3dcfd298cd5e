// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// FormIDKey is the context key for the form session ID
	FormIDKey contextKey = "form_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and form_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("request_id", requestID)),
		}
	}

	if formID, ok := ctx.Value(FormIDKey).(string); ok && formID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("form_id", formID)),
		}
	}

	return newLogger
}

// WithAddressGroup returns a logger scoped to an address group.
func (l *Logger) WithAddressGroup(groupID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("group_id", groupID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// LookupFailed logs a failed address lookup. Cancelled lookups are never
// reported here.
func (l *Logger) LookupFailed(groupID, signature string, err error) {
	l.Warn("address_lookup_failed",
		slog.String("group_id", groupID),
		slog.String("signature", signature),
		slog.String("error", err.Error()),
	)
}

// MissingRequiredRoles reports a group that cannot perform lookups yet.
func (l *Logger) MissingRequiredRoles(groupID string, missing []string) {
	l.Warn("group_missing_required_roles",
		slog.String("group_id", groupID),
		slog.Any("missing", missing),
	)
}
