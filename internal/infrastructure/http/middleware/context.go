package middleware

import (
	"context"

	"github.com/softdeskhq/softdesk/internal/domain"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor injects the authenticated user into the context.
func WithActor(ctx context.Context, actor *domain.User) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the authenticated user, or nil for anonymous
// requests.
func ActorFromContext(ctx context.Context) *domain.User {
	v := ctx.Value(actorContextKey)
	if v == nil {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
