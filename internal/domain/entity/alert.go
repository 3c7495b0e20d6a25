package entity

import (
	"fmt"
	"time"
)

// AlertKind distinguishes the two alert variants kept in the same store.
type AlertKind string

const (
	AlertBalanceChange AlertKind = "balance_change"
	AlertTransfer      AlertKind = "transfer"
)

// Alert is a user-facing notable event. Alerts are never mutated after creation.
//
// Balance-change alerts carry PreviousQuantity, CurrentQuantity, Delta and
// DeltaPercent; transfer alerts carry FromAddress, ToAddress and OccurredAt.
type Alert struct {
	ID                 string    `json:"id"`
	Kind               AlertKind `json:"kind"`
	Chain              string    `json:"chain"`
	Address            string    `json:"address"`
	Symbol             string    `json:"symbol"`
	Amount             float64   `json:"amount"`
	Price              float64   `json:"price"`
	QuoteValue         float64   `json:"quoteValue"`
	DetectedAt         time.Time `json:"detectedAt"`
	PortfolioID        string    `json:"portfolioId,omitempty"`
	RelatedToPortfolio bool      `json:"relatedToPortfolio"`

	PreviousQuantity float64 `json:"previousQuantity,omitempty"`
	CurrentQuantity  float64 `json:"currentQuantity,omitempty"`
	Delta            float64 `json:"delta,omitempty"`
	DeltaPercent     float64 `json:"deltaPercent,omitempty"`

	FromAddress string     `json:"fromAddress,omitempty"`
	ToAddress   string     `json:"toAddress,omitempty"`
	OccurredAt  *time.Time `json:"occurredAt,omitempty"`
}

func (a Alert) String() string {
	if a.Kind == AlertTransfer {
		return fmt.Sprintf("WHALE ALERT - %s: %.2f %s (≈$%.0f) at %s",
			a.Chain, a.Amount, a.Symbol, a.QuoteValue, a.DetectedAt.Format(time.RFC3339))
	}
	direction := "▲"
	if a.Delta < 0 {
		direction = "▼"
	}
	return fmt.Sprintf("%s %s: %.2f %s (%.1f%%, ≈$%.0f) on %s at %s",
		direction, a.Symbol, a.Amount, a.Symbol, a.DeltaPercent, a.QuoteValue, a.Chain, a.DetectedAt.Format(time.RFC3339))
}
