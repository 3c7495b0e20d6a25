package port

import (
	"context"

	"wallet_monitor/internal/domain/entity"
)

// BalanceSource reports the current token balances held by a target,
// keyed by upper-case symbol.
type BalanceSource interface {
	Balances(ctx context.Context, target entity.Target) (map[string]float64, error)
}

// TransferSource reports transfers touching a target since the previous scan.
type TransferSource interface {
	Transfers(ctx context.Context, target entity.Target) ([]entity.Transfer, error)
}
