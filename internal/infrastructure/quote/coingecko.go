package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_monitor/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	defaultVsCurrency       = "usd"
	defaultRequestTimeout   = 10 * time.Second
)

// DefaultCoinGeckoIDs maps ticker symbols to CoinGecko coin ids. Symbols not
// listed are looked up by their lower-cased ticker.
var DefaultCoinGeckoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"SOL":  "solana",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
}

// CoinGeckoConfig configures the CoinGecko client.
type CoinGeckoConfig struct {
	BaseURL        string
	APIKey         string
	VsCurrency     string
	RequestTimeout time.Duration
	RateLimit      float64 // requests per second, 0 disables limiting
	Burst          int
	SymbolIDs      map[string]string
}

// CoinGeckoSource quotes symbols through the CoinGecko simple price endpoint.
type CoinGeckoSource struct {
	client    *fasthttp.Client
	baseURL   string
	apiKey    string
	vs        string
	timeout   time.Duration
	limiter   *rate.Limiter
	symbolIDs map[string]string
	logger    *zap.Logger
}

// NewCoinGeckoSource creates a CoinGecko client.
func NewCoinGeckoSource(cfg CoinGeckoConfig, logger *zap.Logger) *CoinGeckoSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCoinGeckoBaseURL
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = defaultVsCurrency
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ids := make(map[string]string, len(DefaultCoinGeckoIDs)+len(cfg.SymbolIDs))
	for k, v := range DefaultCoinGeckoIDs {
		ids[k] = v
	}
	for k, v := range cfg.SymbolIDs {
		ids[strings.ToUpper(k)] = v
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &CoinGeckoSource{
		client:    &fasthttp.Client{},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		vs:        strings.ToLower(cfg.VsCurrency),
		timeout:   cfg.RequestTimeout,
		limiter:   limiter,
		symbolIDs: ids,
		logger:    logger.Named("CoinGeckoSource"),
	}
}

func (c *CoinGeckoSource) coinID(symbol string) string {
	if id, ok := c.symbolIDs[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// Price returns the current quote of symbol in the configured currency.
func (c *CoinGeckoSource) Price(ctx context.Context, symbol string) (float64, error) {
	price, err := c.price(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		metrics.QuoteRequests.WithLabelValues("coingecko", "error").Inc()
		return 0, err
	}
	metrics.QuoteRequests.WithLabelValues("coingecko", "ok").Inc()
	return price, nil
}

func (c *CoinGeckoSource) price(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("coingecko rate limiter: %w", err)
	}

	id := c.coinID(symbol)
	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", c.baseURL, id, c.vs)
	c.logger.Debug("Requesting price from CoinGecko", zap.String("symbol", symbol), zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return 0, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return 0, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
	}

	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("CoinGecko request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", body))
		return 0, fmt.Errorf("coingecko request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var prices map[string]map[string]float64
	if err := json.Unmarshal(body, &prices); err != nil {
		return 0, fmt.Errorf("failed to unmarshal coingecko response from %s: %w", requestURL, err)
	}
	price, ok := prices[id][c.vs]
	if !ok {
		return 0, fmt.Errorf("coingecko has no %s price for %s (id %s)", c.vs, symbol, id)
	}
	return price, nil
}
