package quote

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/pkg/metrics"
)

// DefaultVariation is the relative jitter applied to mock prices.
const DefaultVariation = 0.02

// DefaultMockPrices seeds the mock source with plausible USD quotes.
var DefaultMockPrices = map[string]float64{
	"AAPL":  178.50,
	"MSFT":  374.25,
	"GOOGL": 141.80,
	"TSLA":  248.90,
	"AMZN":  178.25,
	"NVDA":  495.50,
	"META":  505.75,
	"JPM":   195.30,
	"V":     275.40,
	"SPY":   478.20,
	"QQQ":   405.60,
	"BTC":   43250.00,
	"ETH":   2280.50,
	"BNB":   312.75,
	"XRP":   0.62,
	"SOL":   98.40,
	"ADA":   0.58,
	"DOGE":  0.082,
}

type mockSource struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	prices    map[string]float64
	variation float64
}

// NewMockSource quotes symbols from prices (DefaultMockPrices when nil), each
// lookup jittered by up to ±variation. Unknown symbols get a random price in
// [50, 150).
func NewMockSource(prices map[string]float64, variation float64, seed int64) port.QuoteSource {
	if prices == nil {
		prices = DefaultMockPrices
	}
	table := make(map[string]float64, len(prices))
	for symbol, p := range prices {
		table[strings.ToUpper(symbol)] = p
	}
	return &mockSource{
		rnd:       rand.New(rand.NewSource(seed)),
		prices:    table,
		variation: variation,
	}
}

func (s *mockSource) Price(_ context.Context, symbol string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.prices[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		base = 50 + s.rnd.Float64()*100
	}
	metrics.QuoteRequests.WithLabelValues("mock", "ok").Inc()
	if s.variation == 0 {
		return base, nil
	}
	return base * (1 - s.variation + s.rnd.Float64()*2*s.variation), nil
}
