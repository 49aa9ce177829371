// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the calling username.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// WithActor returns a context with the calling username embedded.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ActorKey{}, username)
}

// ActorFromContext returns the calling username from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}
