package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/riskibarqy/club-roster/internal/usecase"
)

var (
	spanExporterOnce sync.Once
	spanExporter     *tracetest.InMemoryExporter
)

// recordSpans installs one in-memory provider for the package; the global
// tracer binds to the first provider it sees, so tests share it and reset.
func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	spanExporterOnce.Do(func() {
		spanExporter = tracetest.NewInMemoryExporter()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanExporter)))
	})
	spanExporter.Reset()
	t.Cleanup(spanExporter.Reset)
	return spanExporter
}

func spanNamed(spans tracetest.SpanStubs, name string) (tracetest.SpanStub, bool) {
	for _, s := range spans {
		if s.Name == name {
			return s, true
		}
	}
	return tracetest.SpanStub{}, false
}

func spanAttr(s tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range s.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "httpapi.Handler.GetFeed", want: true},
		{in: "httpapi.Handler.SubmitStats", want: true},
		{in: "httpapi.RequireActor", want: false},
		{in: "httpapi.RequireInternalJobToken", want: false},
		{in: "httpapi.CORS", want: false},
		{in: "httpapi.mapError", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldCreateHTTPAPISpan(tt.in), tt.in)
	}
}

func TestActorAttributes(t *testing.T) {
	assert.Empty(t, actorAttributes(context.Background()))
	assert.Empty(t, actorAttributes(withActor(context.Background(), usecase.Actor{})))

	attrs := actorAttributes(withActor(context.Background(), usecase.Actor{UserID: "user-alice"}))
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("club.actor_id", "user-alice"),
		attribute.Bool("club.actor_admin", false),
	}, attrs)
}

func TestStartSpan_ActorRouteCarriesActor(t *testing.T) {
	spans := recordSpans(t)
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/v1/players/p1/ledger", "user-bob", true, nil)

	got := spans.GetSpans()
	server, ok := spanNamed(got, "GET /v1/players/p1/ledger")
	require.True(t, ok, "server span missing: %v", got)
	handler, ok := spanNamed(got, "httpapi.Handler.GetLedger")
	require.True(t, ok, "handler span missing: %v", got)
	assert.Equal(t, server.SpanContext.SpanID(), handler.Parent.SpanID())

	actorID, ok := spanAttr(handler, "club.actor_id")
	require.True(t, ok)
	assert.Equal(t, "user-bob", actorID.AsString())
	isAdmin, ok := spanAttr(handler, "club.actor_admin")
	require.True(t, ok)
	assert.True(t, isAdmin.AsBool())

	for _, name := range []string{"httpapi.RequireActor", "httpapi.CORS", "httpapi.recoverPanic"} {
		_, ok := spanNamed(got, name)
		assert.False(t, ok, "middleware %s must not open its own span", name)
	}
}

func TestStartSpan_FeedAndJobRoutes(t *testing.T) {
	spans := recordSpans(t)
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/v1/feed/players", "user-alice", false, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	feed, ok := spanNamed(spans.GetSpans(), "httpapi.Handler.GetFeed")
	require.True(t, ok)
	actorID, ok := spanAttr(feed, "club.actor_id")
	require.True(t, ok)
	assert.Equal(t, "user-alice", actorID.AsString())

	spans.Reset()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/awards", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	job, ok := spanNamed(spans.GetSpans(), "httpapi.Handler.RunAwardJob")
	require.True(t, ok)
	_, ok = spanAttr(job, "club.actor_id")
	assert.False(t, ok, "job token routes have no actor")
}
