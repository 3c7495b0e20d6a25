package entity

import "time"

// Snapshot is an immutable point-in-time observation of one target.
// Balance polling fills Balances, transfer scanning fills Transfers. Prices
// holds the quote price of every symbol referenced, taken at ObservedAt.
type Snapshot struct {
	Target          Target             `json:"target"`
	Balances        map[string]float64 `json:"balances,omitempty"`
	Transfers       []Transfer         `json:"transfers,omitempty"`
	Prices          map[string]float64 `json:"prices"`
	ObservedAt      time.Time          `json:"observedAt"`
	TotalQuoteValue float64            `json:"totalQuoteValue"`
}

// Balance returns the observed quantity of symbol, 0 when absent.
func (s *Snapshot) Balance(symbol string) float64 {
	if s == nil {
		return 0
	}
	return s.Balances[symbol]
}

// Price returns the price observed for symbol.
func (s *Snapshot) Price(symbol string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	p, ok := s.Prices[symbol]
	return p, ok
}
