package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reel-backend/internal/config"
	"listing-reel-backend/internal/extractor"
	"listing-reel-backend/internal/pipeline"
	"listing-reel-backend/internal/queue"
	"listing-reel-backend/internal/realtime"
	"listing-reel-backend/internal/render"
	"listing-reel-backend/internal/store"
)

func testRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SupabaseJWTSecret:  "router-test-secret",
		AnalyzeRateLimit:   "100-M",
		WebhookToken:       "hook",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	hub := realtime.NewHub(zerolog.Nop())
	t.Cleanup(hub.Close)
	mem := store.NewMemoryStore(hub)
	orch := pipeline.NewOrchestrator(mem, render.NewStubRenderer(0, nil, zerolog.Nop()), zerolog.Nop())
	q := queue.NewLocalQueue(orch, 1, 10, zerolog.Nop())
	t.Cleanup(func() { _ = q.Shutdown(context.Background()) })

	router, err := newRouter(cfg, routerDeps{
		store:    mem,
		logs:     mem,
		dbPing:   mem,
		bus:      hub,
		queue:    q,
		listings: extractor.New(zerolog.Nop()),
	}, zerolog.Nop())
	require.NoError(t, err)
	return router, cfg
}

func bearer(t *testing.T, cfg *config.Config) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uuid.NewString()}).
		SignedString([]byte(cfg.SupabaseJWTSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestRouter_PublicEndpoints(t *testing.T) {
	router, _ := testRouter(t)

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AnalyzeDemoListing(t *testing.T) {
	router, cfg := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/analyze",
		strings.NewReader(`{"url":"https://example.com/demo-listing"}`))
	req.Header.Set("Authorization", bearer(t, cfg))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Stunning Modern Downtown Condo")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_WebhookUsesToken(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("X-Webhook-Token", "hook")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
