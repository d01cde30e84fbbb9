package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fountain/fountain-api/internal/auth"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/server"
	"github.com/fountain/fountain-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

type ledgerProbe struct {
	index uint32
	err   error
}

func (p ledgerProbe) GetValidatedLedgerIndex(ctx context.Context) (uint32, error) {
	return p.index, p.err
}

func newRouter(probe ledgerProbe, origins []string) http.Handler {
	return server.NewRouter(server.Dependencies{
		Stage:          "test",
		Stablecoins:    &services.StablecoinService{},
		Ledger:         probe,
		Authenticator:  auth.NewAuthenticator("server-test-secret", ""),
		AllowedOrigins: origins,
	})
}

func TestRouter_Health(t *testing.T) {
	r := newRouter(ledgerProbe{index: 1234}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","ledger_index":1234}`, w.Body.String())

	down := newRouter(ledgerProbe{err: errors.New("rpc unreachable")}, nil)
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "rpc unreachable")
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := newRouter(ledgerProbe{}, nil)

	for _, path := range []string{
		"/api/v1/stablecoins/00000000-0000-0000-0000-000000000000",
		"/api/v1/operations/00000000-0000-0000-0000-000000000000/wallet",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_CORS(t *testing.T) {
	r := newRouter(ledgerProbe{}, []string{"https://app.fountain.dev"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stablecoins", nil)
	req.Header.Set("Origin", "https://app.fountain.dev")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.fountain.dev", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
