package auth

import (
	"context"
	"fmt"
)

// Context keys for passing authentication data through context
type authContextKey int

const (
	actorKey authContextKey = iota + 1000 // Offset from logger keys
)

// WithActor injects the authenticated actor (token subject) into the context
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext extracts the authenticated actor from context
// Returns an error if no actor was attached
func ActorFromContext(ctx context.Context) (string, error) {
	actor, ok := ctx.Value(actorKey).(string)
	if !ok || actor == "" {
		return "", fmt.Errorf("actor not found in context")
	}
	return actor, nil
}
