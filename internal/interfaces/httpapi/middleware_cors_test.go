package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clubOrigin = "https://roster.riverside-fc.example"

func preflight(t *testing.T, s *testServer, path, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestCORS_PreflightSkipsActorCheck(t *testing.T) {
	s := newTestServerWithOrigins(t, []string{clubOrigin})

	// Browsers send preflights without the gateway headers.
	rec := preflight(t, s, "/v1/teams/generate", http.MethodPost, clubOrigin)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, clubOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	allowed := rec.Header().Get("Access-Control-Allow-Headers")
	assert.Contains(t, allowed, headerActorID)
	assert.Contains(t, allowed, headerActorRole)

	rec = preflight(t, s, "/v1/internal/jobs/awards", http.MethodPost, clubOrigin)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Internal-Job-Token")
}

func TestCORS_ActorRouteFromConfiguredOrigin(t *testing.T) {
	s := newTestServerWithOrigins(t, []string{" " + clubOrigin + " "})

	req := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	req.Header.Set("Origin", clubOrigin)
	req.Header.Set(headerActorID, "user-alice")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, clubOrigin, rec.Header().Get("Access-Control-Allow-Origin"))

	// The actor check still applies to real requests from an allowed origin.
	req = httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	req.Header.Set("Origin", clubOrigin)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, clubOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnconfiguredOrigin(t *testing.T) {
	s := newTestServerWithOrigins(t, []string{clubOrigin})

	rec := preflight(t, s, "/v1/submissions", http.MethodPost, "https://elsewhere.example")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Headers"))

	req := httptest.NewRequest(http.MethodGet, "/v1/feed/players", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set(headerActorID, "user-alice")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	s := newTestServer(t)

	rec := preflight(t, s, "/v1/feed/ledger", http.MethodGet, clubOrigin)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Values("Vary"))
}
