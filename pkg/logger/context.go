package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With stores a logger enriched with the given fields in the context.
// The request-ID middleware uses this so every log line downstream of it
// carries the trace ID.
func With(ctx context.Context, fields ...any) context.Context {
	enriched := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, enriched)
}

// From returns the context's logger, falling back to the process logger
// when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
