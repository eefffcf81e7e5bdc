// Package logging defines the structured logger used by every server
// component. ZapLogger is the production implementation.
package logging

import "context"

// Logger takes alternating key/value pairs after the message:
//
//	log.Info(ctx, "lot merged", "user_id", userID, "lot_id", lot.ID)
//
// The context is consulted for request-scoped fields such as the request ID.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given pairs on every line.
	With(args ...any) Logger
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores id in ctx so that log lines written with the returned
// context carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
