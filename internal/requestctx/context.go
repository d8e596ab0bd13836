// Package requestctx carries request-scoped values set by middleware.
package requestctx

import "context"

type contextKey struct{}

var correlationIDKey = &contextKey{}

// SetCorrelationID stores the request correlation id in the context.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the correlation id from context, or "" if not set.
func CorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationIDKey).(string)
	return v
}
