package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// With stores a child of the context logger carrying the given attributes.
func With(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, contextKey{}, From(ctx).With(args...))
}

// WithTrace tags the context logger with the request trace id.
func WithTrace(ctx context.Context, traceID string) context.Context {
	return With(ctx, "trace_id", traceID)
}

// WithEmployee tags the context logger with the authenticated employee.
func WithEmployee(ctx context.Context, employeeID int64, role string) context.Context {
	return With(ctx, "employee_id", employeeID, "role", role)
}

// Lookup returns the logger stored in ctx, if any.
func Lookup(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(contextKey{}).(*slog.Logger)
	return l, ok
}

// From returns the request-scoped logger, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if l, ok := Lookup(ctx); ok {
		return l
	}
	return LoggerWrapper()
}
