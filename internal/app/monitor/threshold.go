package monitor

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// DefaultThreshold applies to symbols without an explicit entry.
const DefaultThreshold = 50000.0

// DefaultThresholds preseeds the registry. Large caps need much higher cutoffs.
var DefaultThresholds = map[string]float64{
	"BTC": 500000,
	"ETH": 50000,
	"BNB": 25000,
	"SOL": 10000,
	"XRP": 5000,
	"ADA": 5000,
}

// ThresholdRegistry maps upper-case symbols to quote-currency cutoffs.
// Zero or negative values are accepted and make every change qualify.
type ThresholdRegistry struct {
	mu           sync.RWMutex
	thresholds   map[string]float64
	defaultValue float64
}

// NewThresholdRegistry creates a registry falling back to defaultValue and
// preseeded with seed (DefaultThresholds when seed is nil).
func NewThresholdRegistry(defaultValue float64, seed map[string]float64) *ThresholdRegistry {
	if seed == nil {
		seed = DefaultThresholds
	}
	r := &ThresholdRegistry{
		thresholds:   make(map[string]float64, len(seed)),
		defaultValue: defaultValue,
	}
	for symbol, value := range seed {
		_ = r.Set(symbol, value)
	}
	return r
}

// NormalizeSymbol returns the registry key for symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Set overwrites the threshold of symbol. Non-finite values and empty symbols
// are rejected and leave the previous value in place.
func (r *ThresholdRegistry) Set(symbol string, value float64) error {
	key := NormalizeSymbol(symbol)
	if key == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidThreshold)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %v for %s", ErrInvalidThreshold, value, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.thresholds[key] = value
	return nil
}

// Get returns the threshold of symbol or the default.
func (r *ThresholdRegistry) Get(symbol string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.thresholds[NormalizeSymbol(symbol)]; ok {
		return v
	}
	return r.defaultValue
}

// Default returns the fallback threshold.
func (r *ThresholdRegistry) Default() float64 {
	return r.defaultValue
}

// All returns a copy of the explicit entries.
func (r *ThresholdRegistry) All() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]float64, len(r.thresholds))
	for k, v := range r.thresholds {
		out[k] = v
	}
	return out
}
