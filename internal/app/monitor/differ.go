package monitor

import (
	"math"

	"github.com/samber/lo"

	"wallet_monitor/internal/domain/entity"
)

// Epsilon is the smallest quantity delta reported as a change. Smaller deltas
// are treated as floating-point noise.
const Epsilon = 1e-4

// Diff compares two snapshots of the same target and returns one change per
// symbol whose quantity moved by more than Epsilon. A nil previous snapshot
// reports every held symbol as a change from 0. Order is unspecified.
func Diff(previous, current *entity.Snapshot) []entity.BalanceChange {
	if current == nil {
		return nil
	}

	var symbols []string
	if previous == nil {
		symbols = lo.Keys(current.Balances)
	} else {
		symbols = lo.Uniq(append(lo.Keys(previous.Balances), lo.Keys(current.Balances)...))
	}

	var changes []entity.BalanceChange
	for _, symbol := range symbols {
		before := previous.Balance(symbol)
		after := current.Balance(symbol)
		delta := after - before
		if math.Abs(delta) <= Epsilon {
			continue
		}

		var pct float64
		if before > 0 {
			pct = delta / before * 100
		}
		changes = append(changes, entity.BalanceChange{
			Target:           current.Target,
			Symbol:           symbol,
			PreviousQuantity: before,
			CurrentQuantity:  after,
			Delta:            delta,
			DeltaPercent:     pct,
			ObservedAt:       current.ObservedAt,
		})
	}
	return changes
}
