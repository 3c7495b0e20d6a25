package chain

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

var (
	simulatedHoldings = []string{"BTC", "ETH", "BNB", "SOL", "ADA", "XRP"}
	transferSymbols   = []string{"BTC", "ETH", "BNB", "SOL"}
)

const (
	holdProbability = 0.6
	maxSimulatedQty = 100.0
)

type simulatedBalances struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedBalanceSource reports random holdings: each supported symbol is
// held with 60% probability, in a quantity within [0, 100).
func NewSimulatedBalanceSource(seed int64) port.BalanceSource {
	return &simulatedBalances{rnd: rand.New(rand.NewSource(seed))}
}

func (s *simulatedBalances) Balances(ctx context.Context, _ entity.Target) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	balances := make(map[string]float64)
	for _, symbol := range simulatedHoldings {
		if s.rnd.Float64() < holdProbability {
			balances[symbol] = s.rnd.Float64() * maxSimulatedQty
		}
	}
	return balances, nil
}

type simulatedTransfers struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewSimulatedTransferSource reports 1 to 3 random inbound transfers per scan,
// each within the 24 hours before now.
func NewSimulatedTransferSource(seed int64, now func() time.Time) port.TransferSource {
	if now == nil {
		now = time.Now
	}
	return &simulatedTransfers{rnd: rand.New(rand.NewSource(seed)), now: now}
}

func (s *simulatedTransfers) Transfers(ctx context.Context, target entity.Target) ([]entity.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 1 + s.rnd.Intn(3)
	out := make([]entity.Transfer, 0, n)
	for i := 0; i < n; i++ {
		symbol := transferSymbols[s.rnd.Intn(len(transferSymbols))]
		out = append(out, entity.Transfer{
			Chain:       target.Chain,
			Symbol:      symbol,
			Amount:      s.amount(symbol),
			FromAddress: fmt.Sprintf("0x%040x", s.rnd.Uint64()),
			ToAddress:   target.Address,
			OccurredAt:  now.Add(-time.Duration(s.rnd.Int63n(int64(24 * time.Hour)))),
		})
	}
	return out, nil
}

func (s *simulatedTransfers) amount(symbol string) float64 {
	switch symbol {
	case "BTC":
		return 10 + s.rnd.Float64()*50
	case "ETH":
		return 100 + s.rnd.Float64()*500
	default:
		return 1000 + s.rnd.Float64()*10000
	}
}
