package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const actorKey contextKey = "actor"

// Actor is the verified identity attached to a request by the JWT middleware.
// Everything downstream (tenant resolution, role checks) reads from it; no
// other layer inspects raw tokens.
type Actor struct {
	AccountID uuid.UUID
	Username  string
	Superuser bool
}

// WithActor returns a context carrying the verified actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the verified actor, or nil when the request is
// unauthenticated.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey).(*Actor)
	return a
}
