package httpapi

import (
	"context"

	"github.com/riskibarqy/club-roster/internal/usecase"
)

type contextKey string

const actorContextKey contextKey = "request_actor"

func withActor(ctx context.Context, a usecase.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, a)
}

func actorFromContext(ctx context.Context) (usecase.Actor, bool) {
	a, ok := ctx.Value(actorContextKey).(usecase.Actor)
	return a, ok
}
