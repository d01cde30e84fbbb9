package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	httpClient "github.com/fountain/fountain-api/internal/client/http"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultBaseURL  = "https://pro-api.coinmarketcap.com"
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = time.Minute
	quotesPath      = "/v2/cryptocurrency/quotes/latest"
)

// CmcQuote is one fiat quote of a token
type CmcQuote struct {
	Price       decimal.Decimal `json:"price"`
	LastUpdated string          `json:"last_updated"`
}

// CmcTokenData is one token entry of a quotes response
type CmcTokenData struct {
	ID     int                 `json:"id"`
	Name   string              `json:"name"`
	Symbol string              `json:"symbol"`
	Quote  map[string]CmcQuote `json:"quote"`
}

// CmcStatus is the status block CoinMarketCap attaches to every response
type CmcStatus struct {
	Timestamp    string `json:"timestamp"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// CmcAPIResponse is the v2 quotes response. The v2 endpoint returns an array
// per symbol even for a single symbol query.
type CmcAPIResponse struct {
	Status CmcStatus                 `json:"status"`
	Data   map[string][]CmcTokenData `json:"data"`
}

// Error represents an API error returned by CoinMarketCap
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("CoinMarketCap API Error: Status %d, Message: %s", e.StatusCode, e.Message)
}

// Option configures a Provider
type Option func(*Provider)

// WithBaseURL points the provider at another quotes host
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithCacheTTL sets how long a fetched quote is reused
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		p.cacheTTL = ttl
	}
}

// Provider converts BRL request amounts into XRP collateral using
// CoinMarketCap quotes, falling back to a fixed rate when no API key is set
// or the quote cannot be fetched.
type Provider struct {
	apiKey   string
	baseURL  string
	cacheTTL time.Duration
	fallback decimal.Decimal
	usdBRL   decimal.Decimal
	client   *httpClient.HTTPClient
	logger   *zap.Logger

	mu       sync.Mutex
	cached   decimal.Decimal
	cachedAt time.Time
}

// NewProvider creates a rate provider
func NewProvider(apiKey string, fallbackXRPBRL, usdBRL decimal.Decimal, opts ...Option) *Provider {
	p := &Provider{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		cacheTTL: defaultCacheTTL,
		fallback: fallbackXRPBRL,
		usdBRL:   usdBRL,
		logger:   logger.Log.With(zap.String("component", "rates")),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = httpClient.NewHTTPClient(
		httpClient.WithBaseURL(p.baseURL),
		httpClient.WithTimeout(defaultTimeout),
	)
	return p
}

// USDBRL is the fixed USD/BRL rate used for burn return amounts
func (p *Provider) USDBRL() decimal.Decimal {
	return p.usdBRL
}

// XRPPriceBRL returns the price of one XRP in BRL
func (p *Provider) XRPPriceBRL(ctx context.Context) (decimal.Decimal, error) {
	if p.apiKey == "" {
		return p.fallback, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cachedAt.IsZero() && time.Since(p.cachedAt) < p.cacheTTL {
		return p.cached, nil
	}

	price, err := p.quote(ctx, "XRP", "BRL")
	if err != nil {
		p.logger.Warn("XRP quote unavailable, using fallback rate",
			zap.String("fallback", p.fallback.String()),
			zap.Error(err))
		return p.fallback, nil
	}

	p.cached = price
	p.cachedAt = time.Now()
	return price, nil
}

// quote fetches the latest price of symbol in convert
func (p *Provider) quote(ctx context.Context, symbol, convert string) (decimal.Decimal, error) {
	resp, err := p.client.Get(ctx, quotesPath,
		httpClient.WithQueryParam("symbol", strings.ToUpper(symbol)),
		httpClient.WithQueryParam("convert", strings.ToUpper(convert)),
		httpClient.WithHeader("X-CMC_PRO_API_KEY", p.apiKey),
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get latest quotes from CoinMarketCap: %w", err)
	}

	var apiResponse CmcAPIResponse
	if err := p.client.ProcessJSONResponse(resp, &apiResponse); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode CoinMarketCap response: %w", err)
	}
	if apiResponse.Status.ErrorCode != 0 {
		return decimal.Zero, &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API Error %d: %s", apiResponse.Status.ErrorCode, apiResponse.Status.ErrorMessage),
		}
	}

	tokens := apiResponse.Data[strings.ToUpper(symbol)]
	if len(tokens) == 0 {
		return decimal.Zero, &Error{StatusCode: resp.StatusCode, Message: "no data for " + symbol}
	}
	q, ok := tokens[0].Quote[strings.ToUpper(convert)]
	if !ok || !q.Price.IsPositive() {
		return decimal.Zero, &Error{StatusCode: resp.StatusCode, Message: "no " + convert + " quote for " + symbol}
	}
	return q.Price, nil
}
