package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wallet_monitor/internal/domain/entity"
)

var errFeedExhausted = errors.New("feed exhausted")

type staticQuotes map[string]float64

func (q staticQuotes) Price(_ context.Context, symbol string) (float64, error) {
	p, ok := q[symbol]
	if !ok {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return p, nil
}

// scriptedBalances replays a list of observations per target; a nil entry
// fails that tick and running past the end fails every further tick.
type scriptedBalances struct {
	mu      sync.Mutex
	scripts map[entity.TargetKey][]map[string]float64
	calls   map[entity.TargetKey]int
	block   chan struct{}
	started chan struct{}
}

func newScriptedBalances() *scriptedBalances {
	return &scriptedBalances{
		scripts: make(map[entity.TargetKey][]map[string]float64),
		calls:   make(map[entity.TargetKey]int),
	}
}

func (s *scriptedBalances) script(chain, address string, ticks ...map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[entity.Target{Chain: chain, Address: address}.Key()] = ticks
}

func (s *scriptedBalances) Balances(ctx context.Context, target entity.Target) (map[string]float64, error) {
	key := target.Key()
	s.mu.Lock()
	n := s.calls[key]
	s.calls[key] = n + 1
	ticks := s.scripts[key]
	block, started := s.block, s.started
	s.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if n >= len(ticks) {
		return nil, errFeedExhausted
	}
	if ticks[n] == nil {
		return nil, errors.New("node unavailable")
	}
	out := make(map[string]float64, len(ticks[n]))
	for k, v := range ticks[n] {
		out[k] = v
	}
	return out, nil
}

func (s *scriptedBalances) callsFor(chain, address string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[entity.Target{Chain: chain, Address: address}.Key()]
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []entity.Alert
}

func (n *recordingNotifier) Notify(_ context.Context, alert entity.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}
