package monitor

import (
	"context"
	"fmt"
	"math"
	"time"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

// DefaultTransferInterval is the polling period of transfer scans.
const DefaultTransferInterval = 10 * time.Minute

type transferFetcher struct {
	source port.TransferSource
	quotes port.QuoteSource
	now    func() time.Time
}

// NewTransferFetcher scans source for transfers and prices every symbol seen.
func NewTransferFetcher(source port.TransferSource, quotes port.QuoteSource, now func() time.Time) Fetcher {
	if now == nil {
		now = time.Now
	}
	return &transferFetcher{source: source, quotes: quotes, now: now}
}

func (f *transferFetcher) Fetch(ctx context.Context, target entity.Target) (*entity.Snapshot, error) {
	transfers, err := f.source.Transfers(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch transfers of %s: %w", target.Key(), err)
	}

	snapshot := &entity.Snapshot{
		Target:    target,
		Transfers: make([]entity.Transfer, 0, len(transfers)),
		Prices:    make(map[string]float64),
	}
	for _, tx := range transfers {
		tx.Symbol = NormalizeSymbol(tx.Symbol)
		price, seen := snapshot.Prices[tx.Symbol]
		if !seen {
			price, err = f.quotes.Price(ctx, tx.Symbol)
			if err != nil {
				return nil, fmt.Errorf("price %s: %w", tx.Symbol, err)
			}
			snapshot.Prices[tx.Symbol] = price
		}
		snapshot.Transfers = append(snapshot.Transfers, tx)
		snapshot.TotalQuoteValue += math.Abs(tx.Amount * price)
	}
	snapshot.ObservedAt = f.now()
	return snapshot, nil
}

type transferEvaluator struct {
	thresholds *ThresholdRegistry
}

// NewTransferEvaluator raises an alert for every scanned transfer whose value
// reaches the symbol threshold. The previous snapshot is not consulted.
func NewTransferEvaluator(thresholds *ThresholdRegistry) Evaluator {
	return &transferEvaluator{thresholds: thresholds}
}

func (e *transferEvaluator) Evaluate(_, current *entity.Snapshot) []entity.Alert {
	var alerts []entity.Alert
	for _, tx := range current.Transfers {
		price, _ := current.Price(tx.Symbol)
		amount := math.Abs(tx.Amount)
		value := amount * math.Abs(price)
		if value < e.thresholds.Get(tx.Symbol) {
			continue
		}

		occurred := tx.OccurredAt
		chain := tx.Chain
		if chain == "" {
			chain = current.Target.Chain
		}
		alerts = append(alerts, entity.Alert{
			ID:                 newAlertID(),
			Kind:               entity.AlertTransfer,
			Chain:              chain,
			Address:            current.Target.Address,
			Symbol:             tx.Symbol,
			Amount:             amount,
			Price:              price,
			QuoteValue:         value,
			DetectedAt:         current.ObservedAt,
			PortfolioID:        current.Target.PortfolioID,
			RelatedToPortfolio: current.Target.PortfolioID != "",
			FromAddress:        tx.FromAddress,
			ToAddress:          tx.ToAddress,
			OccurredAt:         &occurred,
		})
	}
	return alerts
}
