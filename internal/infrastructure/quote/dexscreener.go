package quote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"wallet_monitor/internal/pkg/metrics"
)

const DefaultDexScreenerBaseURL = "https://api.dexscreener.com"

// DexToken locates a token on DEX Screener.
type DexToken struct {
	Chain   string // DEX Screener chain id, e.g. "ethereum", "bsc"
	Address string
}

// DefaultDexTokens maps symbols to the wrapped token whose pairs are used for pricing.
var DefaultDexTokens = map[string]DexToken{
	"ETH": {Chain: "ethereum", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
	"BTC": {Chain: "ethereum", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"},
	"BNB": {Chain: "bsc", Address: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"},
	"SOL": {Chain: "solana", Address: "So11111111111111111111111111111111111111112"},
}

// DexScreenerConfig configures the DEX Screener client.
type DexScreenerConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	Tokens         map[string]DexToken
}

type dexPairsWrapper struct {
	Pairs []dexPair `json:"pairs"`
}

type dexPair struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUsd  string `json:"priceUsd"`
	Liquidity *struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
}

func (p dexPair) liquidityUsd() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.Usd
}

// DexScreenerSource prices a symbol from the most liquid DEX pair of its token.
type DexScreenerSource struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	tokens  map[string]DexToken
	logger  *zap.Logger
}

// NewDexScreenerSource creates a DEX Screener client.
func NewDexScreenerSource(cfg DexScreenerConfig, logger *zap.Logger) *DexScreenerSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultDexScreenerBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := lo.Assign(DefaultDexTokens, lo.MapKeys(cfg.Tokens, func(_ DexToken, k string) string {
		return strings.ToUpper(k)
	}))
	return &DexScreenerSource{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.RequestTimeout,
		tokens:  tokens,
		logger:  logger.Named("DexScreenerSource"),
	}
}

// Price implements port.QuoteSource.
func (c *DexScreenerSource) Price(ctx context.Context, symbol string) (float64, error) {
	price, err := c.price(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		metrics.QuoteRequests.WithLabelValues("dexscreener", "error").Inc()
		return 0, err
	}
	metrics.QuoteRequests.WithLabelValues("dexscreener", "ok").Inc()
	return price, nil
}

func (c *DexScreenerSource) price(ctx context.Context, symbol string) (float64, error) {
	token, ok := c.tokens[symbol]
	if !ok {
		return 0, fmt.Errorf("dexscreener: no token configured for %s", symbol)
	}

	pairs, err := c.tokenPairs(ctx, token)
	if err != nil {
		return 0, err
	}

	candidates := lo.Filter(pairs, func(p dexPair, _ int) bool {
		return strings.EqualFold(p.BaseToken.Address, token.Address) && p.PriceUsd != ""
	})
	if len(candidates) == 0 {
		return 0, fmt.Errorf("dexscreener: no priced pair for %s on %s", symbol, token.Chain)
	}
	best := lo.MaxBy(candidates, func(a, b dexPair) bool {
		return a.liquidityUsd() > b.liquidityUsd()
	})

	price, err := strconv.ParseFloat(best.PriceUsd, 64)
	if err != nil {
		return 0, fmt.Errorf("dexscreener: invalid priceUsd %q for %s: %w", best.PriceUsd, symbol, err)
	}
	return price, nil
}

func (c *DexScreenerSource) tokenPairs(ctx context.Context, token DexToken) ([]dexPair, error) {
	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, token.Chain, token.Address)
	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("dexscreener request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	// The endpoint answers with a bare array; older deployments wrap it in {"pairs": [...]}.
	var wrapped dexPairsWrapper
	if err := json.Unmarshal(rawBody, &wrapped); err == nil && wrapped.Pairs != nil {
		return wrapped.Pairs, nil
	}
	var pairs []dexPair
	if err := json.Unmarshal(rawBody, &pairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dexscreener response from %s: %w", requestURL, err)
	}
	return pairs, nil
}
