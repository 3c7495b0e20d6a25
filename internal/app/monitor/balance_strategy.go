package monitor

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

// DefaultBalanceInterval is the polling period of balance tasks.
const DefaultBalanceInterval = 15 * time.Minute

type balanceFetcher struct {
	source port.BalanceSource
	quotes port.QuoteSource
	now    func() time.Time
}

// NewBalanceFetcher reads balances from source and prices every held symbol
// through quotes. Any failure fails the whole fetch.
func NewBalanceFetcher(source port.BalanceSource, quotes port.QuoteSource, now func() time.Time) Fetcher {
	if now == nil {
		now = time.Now
	}
	return &balanceFetcher{source: source, quotes: quotes, now: now}
}

func (f *balanceFetcher) Fetch(ctx context.Context, target entity.Target) (*entity.Snapshot, error) {
	raw, err := f.source.Balances(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch balances of %s: %w", target.Key(), err)
	}

	snapshot := &entity.Snapshot{
		Target:   target,
		Balances: make(map[string]float64, len(raw)),
		Prices:   make(map[string]float64, len(raw)),
	}
	for symbol, qty := range raw {
		symbol = NormalizeSymbol(symbol)
		if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
			return nil, fmt.Errorf("invalid balance %v of %s for %s", qty, symbol, target.Key())
		}
		price, err := f.quotes.Price(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("price %s: %w", symbol, err)
		}
		snapshot.Balances[symbol] = qty
		snapshot.Prices[symbol] = price
		snapshot.TotalQuoteValue += qty * price
	}
	snapshot.ObservedAt = f.now()
	return snapshot, nil
}

type balanceEvaluator struct {
	thresholds     *ThresholdRegistry
	ignoreBaseline bool
	logger         *zap.Logger
}

// NewBalanceEvaluator raises an alert for every balance change whose value at
// the observed price reaches the symbol threshold. With ignoreBaseline the
// first observation of a target only establishes the baseline.
func NewBalanceEvaluator(thresholds *ThresholdRegistry, ignoreBaseline bool, logger *zap.Logger) Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &balanceEvaluator{thresholds: thresholds, ignoreBaseline: ignoreBaseline, logger: logger}
}

func (e *balanceEvaluator) Evaluate(previous, current *entity.Snapshot) []entity.Alert {
	if previous == nil && e.ignoreBaseline {
		return nil
	}

	var alerts []entity.Alert
	for _, change := range Diff(previous, current) {
		price, ok := current.Price(change.Symbol)
		if !ok {
			// symbol no longer held: value the outflow at the last known price
			price, ok = previous.Price(change.Symbol)
		}
		if !ok {
			e.logger.Debug("No price for balance change, skipping", zap.String("symbol", change.Symbol), zap.Stringer("target", change.Target.Key()))
			continue
		}

		amount := math.Abs(change.Delta)
		value := amount * math.Abs(price)
		if value < e.thresholds.Get(change.Symbol) {
			continue
		}
		alerts = append(alerts, entity.Alert{
			ID:                 newAlertID(),
			Kind:               entity.AlertBalanceChange,
			Chain:              current.Target.Chain,
			Address:            current.Target.Address,
			Symbol:             change.Symbol,
			Amount:             amount,
			Price:              price,
			QuoteValue:         value,
			DetectedAt:         change.ObservedAt,
			PortfolioID:        current.Target.PortfolioID,
			RelatedToPortfolio: current.Target.PortfolioID != "",
			PreviousQuantity:   change.PreviousQuantity,
			CurrentQuantity:    change.CurrentQuantity,
			Delta:              change.Delta,
			DeltaPercent:       change.DeltaPercent,
		})
	}
	return alerts
}
