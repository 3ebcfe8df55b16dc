package logger

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// logContext is the immutable bag of logging values carried by a request.
// Every With* helper copies it, so a child context never leaks values into
// its parent.
type logContext struct {
	requestID string
	userID    string
	logger    Logger
}

func fromCtx(ctx context.Context) logContext {
	if lc, ok := ctx.Value(ctxKey{}).(logContext); ok {
		return lc
	}
	return logContext{}
}

func withCtx(ctx context.Context, fn func(*logContext)) context.Context {
	lc := fromCtx(ctx)
	fn(&lc)
	return context.WithValue(ctx, ctxKey{}, lc)
}

// WithRequestID tags ctx with a request id, generating one when empty
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return withCtx(ctx, func(lc *logContext) { lc.requestID = requestID })
}

// RequestIDFromContext returns the request id, or "" outside a request
func RequestIDFromContext(ctx context.Context) string {
	return fromCtx(ctx).requestID
}

// WithUserID tags ctx with the authenticated user
func WithUserID(ctx context.Context, userID string) context.Context {
	return withCtx(ctx, func(lc *logContext) { lc.userID = userID })
}

// UserIDFromContext returns the authenticated user, or ""
func UserIDFromContext(ctx context.Context) string {
	return fromCtx(ctx).userID
}

// WithLogger binds l to ctx
func WithLogger(ctx context.Context, l Logger) context.Context {
	return withCtx(ctx, func(lc *logContext) { lc.logger = l })
}

// FromContext returns the logger bound to ctx or the process default
func FromContext(ctx context.Context) Logger {
	if l := fromCtx(ctx).logger; l != nil {
		return l
	}
	return Default()
}

func (lc logContext) fields() []Field {
	var fields []Field
	if lc.requestID != "" {
		fields = append(fields, String("request_id", lc.requestID))
	}
	if lc.userID != "" {
		fields = append(fields, String("user_id", lc.userID))
	}
	return fields
}

// Ctx is FromContext(ctx).WithContext(ctx): the bound logger carrying the
// request and user ids.
func Ctx(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
