package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldTraceRequest(t *testing.T) {
	untraced := []string{"/healthz", " /healthz ", "/HEALTHZ", "/readyz"}
	for _, path := range untraced {
		assert.False(t, shouldTraceRequest(path), path)
	}
	traced := []string{"/v1/feed/players", "/v1/players/p1/ledger", "/v1/internal/jobs/awards", "/v1/submissions/pending", "/docs"}
	for _, path := range traced {
		assert.True(t, shouldTraceRequest(path), path)
	}
}

func TestRequestTracing_SkipsHealthCheck(t *testing.T) {
	spans := recordSpans(t)
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, spans.GetSpans())
}

func TestRequestTracing_NamesSpanByPath(t *testing.T) {
	spans := recordSpans(t)
	s := newTestServer(t)

	// Rejected before the handler runs, but the request is still traced.
	rec, _ := s.do(t, http.MethodGet, "/v1/feed/teams", "", false, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	got := spans.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, "GET /v1/feed/teams", got[0].Name)
	_, ok := spanNamed(got, "httpapi.Handler.GetFeed")
	assert.False(t, ok)
}
