package rates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fountain/fountain-api/internal/client/rates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_XRPPriceBRL(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v2/cryptocurrency/quotes/latest", r.URL.Path)
		assert.Equal(t, "XRP", r.URL.Query().Get("symbol"))
		assert.Equal(t, "BRL", r.URL.Query().Get("convert"))
		assert.Equal(t, "test-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		_, _ = w.Write([]byte(`{"status":{"error_code":0},"data":{"XRP":[{"id":52,"symbol":"XRP","quote":{"BRL":{"price":12.34}}}]}}`))
	}))
	defer srv.Close()

	p := rates.NewProvider("test-key", decimal.RequireFromString("28.5"), decimal.RequireFromString("5.25"), rates.WithBaseURL(srv.URL))

	price, err := p.XRPPriceBRL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12.34", price.String())

	_, err = p.XRPPriceBRL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second call served from cache")
	assert.Equal(t, "5.25", p.USDBRL().String())
}

func TestProvider_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"error_code":1002,"error_message":"API key missing."},"data":{}}`))
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		apiKey string
	}{
		{"no api key", ""},
		{"api error", "bad-key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := rates.NewProvider(tt.apiKey, decimal.RequireFromString("28.5"), decimal.RequireFromString("5.25"), rates.WithBaseURL(srv.URL))
			price, err := p.XRPPriceBRL(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "28.5", price.String())
		})
	}
}
