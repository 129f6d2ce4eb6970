package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/poofware/logistics-gateway/internal/config"
	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/repositories"
)

func newTestApp(t *testing.T) (*App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cfg := &config.Config{
		AppUrl:                  "https://partners.example.com",
		QueueNamespace:          constants.DefaultQueueNamespace,
		LDFlag_CORSHighSecurity: true,
	}
	return &App{Config: cfg, Redis: client}, mr
}

func TestSeedDemoPartnerIsIdempotent(t *testing.T) {
	a, mr := newTestApp(t)
	partners := repositories.NewRedisPartnerRepository(a.Redis)
	ctx := context.Background()

	require.NoError(t, SeedDemoPartner(ctx, partners, ""))
	p, err := partners.GetByLogin(ctx, constants.DemoPartnerLogin)
	require.NoError(t, err)
	require.Equal(t, constants.DemoPartnerID, p.PartnerID)
	require.Equal(t, constants.DemoPartnerSecretHash, p.SecretHash)

	before, err := mr.Get("partner:" + constants.DemoPartnerLogin)
	require.NoError(t, err)
	require.NoError(t, SeedDemoPartner(ctx, partners, "ignored-because-present"))
	after, err := mr.Get("partner:" + constants.DemoPartnerLogin)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestPartnerRepositoryDefaultsToRedis(t *testing.T) {
	a, mr := newTestApp(t)
	require.NoError(t, SeedDemoPartner(context.Background(), a.PartnerRepository(), ""))
	require.True(t, mr.Exists("partner:"+constants.DemoPartnerLogin))
}

func TestRouterHealthAndAuthGate(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.WithCORS(a.NewRouter(a.Wire()))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"OK","queues":{"invoice":0,"inbound":0,"outbound":0,"other":0}}`, rr.Body.String())

	for _, path := range []string{"/auth/revoke", "/transfer/inbound", "/transfer/outbound", "/transfer/state", "/invoice/issue", "/invoice/actual", "/invoice/state"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	a, _ := newTestApp(t)
	rr := httptest.NewRecorder()
	a.NewRouter(a.Wire()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transfer/test", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"code":"not_found","message":"Invalid request endpoint"}`, rr.Body.String())
}

func TestHealthReportsStoreDown(t *testing.T) {
	a, mr := newTestApp(t)
	h := a.NewRouter(a.Wire())
	mr.Close()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCORSPolicy(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.WithCORS(a.NewRouter(a.Wire()))

	preflight := func(origin string) string {
		req := httptest.NewRequest(http.MethodOptions, "/transfer/inbound", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Header().Get("Access-Control-Allow-Origin")
	}

	require.Equal(t, "https://partners.example.com", preflight("https://partners.example.com"))
	require.Empty(t, preflight(CORSLowSecurityAllowedOriginLocalhost))

	a.Config.LDFlag_CORSHighSecurity = false
	h = a.WithCORS(a.NewRouter(a.Wire()))
	require.Equal(t, CORSLowSecurityAllowedOriginLocalhost, preflight(CORSLowSecurityAllowedOriginLocalhost))
}
