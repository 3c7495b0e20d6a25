package entity

import (
	"fmt"
	"math"
	"time"
)

// BalanceChange is a detected delta of one symbol between two snapshots.
type BalanceChange struct {
	Target           Target    `json:"target"`
	Symbol           string    `json:"symbol"`
	PreviousQuantity float64   `json:"previousQuantity"`
	CurrentQuantity  float64   `json:"currentQuantity"`
	Delta            float64   `json:"delta"`
	DeltaPercent     float64   `json:"deltaPercent"` // 0 when PreviousQuantity is 0
	ObservedAt       time.Time `json:"observedAt"`
}

func (c BalanceChange) String() string {
	direction := "▲"
	if c.Delta < 0 {
		direction = "▼"
	}
	return fmt.Sprintf("%s %s: %.2f %s (%.1f%%) at %s",
		direction, c.Symbol, math.Abs(c.Delta), c.Symbol, c.DeltaPercent, c.ObservedAt.Format(time.RFC3339))
}
