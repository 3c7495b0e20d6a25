package quote

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/pkg/metrics"
)

// DefaultCacheTTL keeps a price for one minute.
const DefaultCacheTTL = time.Minute

type cachedSource struct {
	next   port.QuoteSource
	prices *cache.Cache
}

// NewCachedSource memoizes prices of next for ttl. Failures are not cached.
func NewCachedSource(next port.QuoteSource, ttl time.Duration) port.QuoteSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &cachedSource{
		next:   next,
		prices: cache.New(ttl, 2*ttl),
	}
}

func (c *cachedSource) Price(ctx context.Context, symbol string) (float64, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if v, found := c.prices.Get(key); found {
		metrics.QuoteRequests.WithLabelValues("cache", "hit").Inc()
		return v.(float64), nil
	}
	metrics.QuoteRequests.WithLabelValues("cache", "miss").Inc()

	price, err := c.next.Price(ctx, key)
	if err != nil {
		return 0, err
	}
	c.prices.Set(key, price, cache.DefaultExpiration)
	return price, nil
}
