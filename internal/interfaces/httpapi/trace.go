package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("club-roster/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan opens a handler span under the request span. Handlers behind
// RequireActor get the gateway identity as attributes.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// Untraced routes like /healthz have no parent.
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(actorAttributes(ctx)...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

func actorAttributes(ctx context.Context) []attribute.KeyValue {
	actor, ok := actorFromContext(ctx)
	if !ok || actor.UserID == "" {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String("club.actor_id", actor.UserID),
		attribute.Bool("club.actor_admin", actor.Admin),
	}
}
