package monitor

import (
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"wallet_monitor/internal/domain/entity"
)

// AlertStore is an append-only, internally synchronized alert collection.
// Alerts leave the store only through PruneOlderThan.
type AlertStore struct {
	mu     sync.RWMutex
	alerts []entity.Alert
	now    func() time.Time
}

// NewAlertStore creates an empty store. now defaults to time.Now.
func NewAlertStore(now func() time.Time) *AlertStore {
	if now == nil {
		now = time.Now
	}
	return &AlertStore{now: now}
}

// Append adds alert to the store.
func (s *AlertStore) Append(alert entity.Alert) {
	s.mu.Lock()
	s.alerts = append(s.alerts, alert)
	s.mu.Unlock()
}

// List returns a copy of every stored alert in append order.
func (s *AlertStore) List() []entity.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Filter returns a copy of the alerts matching pred.
func (s *AlertStore) Filter(pred func(entity.Alert) bool) []entity.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.alerts, func(a entity.Alert, _ int) bool {
		return pred(a)
	})
}

// ForSymbol returns the alerts of symbol, case-insensitively.
func (s *AlertStore) ForSymbol(symbol string) []entity.Alert {
	symbol = strings.TrimSpace(symbol)
	return s.Filter(func(a entity.Alert) bool { return strings.EqualFold(a.Symbol, symbol) })
}

// ForChain returns the alerts raised on chain, case-insensitively.
func (s *AlertStore) ForChain(chain string) []entity.Alert {
	chain = strings.TrimSpace(chain)
	return s.Filter(func(a entity.Alert) bool { return strings.EqualFold(a.Chain, chain) })
}

// Len returns the number of stored alerts.
func (s *AlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// PruneOlderThan removes alerts detected before now-age and returns how many
// were removed. The cutoff is taken once, under the write lock, so alerts
// appended while the prune waits for the lock are never considered.
func (s *AlertStore) PruneOlderThan(age time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-age)
	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if !a.DetectedAt.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	removed := len(s.alerts) - len(kept)
	clear(s.alerts[len(kept):])
	s.alerts = kept
	return removed
}
