package chain

import (
	"context"
	"fmt"
	"strings"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

// BalanceRouter dispatches balance reads by chain. Chains without a route go
// to the fallback source.
type BalanceRouter struct {
	routes   map[string]port.BalanceSource
	fallback port.BalanceSource
}

// NewBalanceRouter creates a router with an optional fallback.
func NewBalanceRouter(fallback port.BalanceSource) *BalanceRouter {
	return &BalanceRouter{routes: make(map[string]port.BalanceSource), fallback: fallback}
}

// Route sends reads of chain to source. Not safe for use after polling starts.
func (r *BalanceRouter) Route(chain string, source port.BalanceSource) *BalanceRouter {
	r.routes[strings.ToLower(strings.TrimSpace(chain))] = source
	return r
}

func (r *BalanceRouter) Balances(ctx context.Context, target entity.Target) (map[string]float64, error) {
	if src, ok := r.routes[target.Key().Chain]; ok {
		return src.Balances(ctx, target)
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("no balance source for chain %q", target.Chain)
	}
	return r.fallback.Balances(ctx, target)
}
