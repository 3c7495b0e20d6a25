package monitor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_monitor/internal/domain/entity"
)

type balanceSourceFunc func(ctx context.Context, target entity.Target) (map[string]float64, error)

func (f balanceSourceFunc) Balances(ctx context.Context, target entity.Target) (map[string]float64, error) {
	return f(ctx, target)
}

type transferSourceFunc func(ctx context.Context, target entity.Target) ([]entity.Transfer, error)

func (f transferSourceFunc) Transfers(ctx context.Context, target entity.Target) ([]entity.Transfer, error) {
	return f(ctx, target)
}

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestBalanceFetcher_PricesEverySymbol(t *testing.T) {
	source := balanceSourceFunc(func(_ context.Context, _ entity.Target) (map[string]float64, error) {
		return map[string]float64{"eth": 2, "BTC": 0.5}, nil
	})
	fetcher := NewBalanceFetcher(source, staticQuotes{"ETH": 2000, "BTC": 40000}, fixedClock)

	snap, err := fetcher.Fetch(context.Background(), entity.Target{Chain: "Ethereum", Address: "0xABC"})

	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"ETH": 2, "BTC": 0.5}, snap.Balances)
	assert.Equal(t, 2000.0, snap.Prices["ETH"])
	assert.Equal(t, 24000.0, snap.TotalQuoteValue)
	assert.Equal(t, fixedNow, snap.ObservedAt)
}

func TestBalanceFetcher_Failures(t *testing.T) {
	target := entity.Target{Chain: "Ethereum", Address: "0xABC"}

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("rpc down")
		fetcher := NewBalanceFetcher(balanceSourceFunc(func(context.Context, entity.Target) (map[string]float64, error) {
			return nil, boom
		}), staticQuotes{}, fixedClock)

		_, err := fetcher.Fetch(context.Background(), target)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing price", func(t *testing.T) {
		fetcher := NewBalanceFetcher(balanceSourceFunc(func(context.Context, entity.Target) (map[string]float64, error) {
			return map[string]float64{"PEPE": 1}, nil
		}), staticQuotes{}, fixedClock)

		_, err := fetcher.Fetch(context.Background(), target)
		assert.Error(t, err)
	})

	t.Run("negative balance", func(t *testing.T) {
		fetcher := NewBalanceFetcher(balanceSourceFunc(func(context.Context, entity.Target) (map[string]float64, error) {
			return map[string]float64{"ETH": -1}, nil
		}), staticQuotes{"ETH": 1}, fixedClock)

		_, err := fetcher.Fetch(context.Background(), target)
		assert.Error(t, err)
	})
}

func balanceSnapshot(balances, prices map[string]float64) *entity.Snapshot {
	return &entity.Snapshot{
		Target:     entity.Target{Chain: "Ethereum", Address: "0xABC", PortfolioID: "p-1"},
		Balances:   balances,
		Prices:     prices,
		ObservedAt: fixedNow,
	}
}

func TestBalanceEvaluator_ThresholdIsInclusive(t *testing.T) {
	thresholds := NewThresholdRegistry(DefaultThreshold, map[string]float64{"ETH": 50000})
	eval := NewBalanceEvaluator(thresholds, false, nil)
	prices := map[string]float64{"ETH": 2000}

	// 25 ETH * 2000 = 50000 exactly
	exact := eval.Evaluate(
		balanceSnapshot(map[string]float64{"ETH": 10}, prices),
		balanceSnapshot(map[string]float64{"ETH": 35}, prices),
	)
	require.Len(t, exact, 1)
	assert.Equal(t, 50000.0, exact[0].QuoteValue)

	// one quote unit below
	below := eval.Evaluate(
		balanceSnapshot(map[string]float64{"ETH": 10}, prices),
		balanceSnapshot(map[string]float64{"ETH": 34.9995}, prices),
	)
	assert.Empty(t, below)
}

func TestBalanceEvaluator_AlertFields(t *testing.T) {
	eval := NewBalanceEvaluator(NewThresholdRegistry(DefaultThreshold, nil), false, nil)

	alerts := eval.Evaluate(
		balanceSnapshot(map[string]float64{"ETH": 40}, map[string]float64{"ETH": 2000}),
		balanceSnapshot(map[string]float64{"ETH": 10}, map[string]float64{"ETH": 2100}),
	)

	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, entity.AlertBalanceChange, a.Kind)
	assert.Equal(t, "ETH", a.Symbol)
	assert.Equal(t, 30.0, a.Amount)
	assert.Equal(t, 2100.0, a.Price)
	assert.Equal(t, 63000.0, a.QuoteValue)
	assert.Equal(t, -30.0, a.Delta)
	assert.Equal(t, -75.0, a.DeltaPercent)
	assert.Equal(t, fixedNow, a.DetectedAt)
	assert.True(t, a.RelatedToPortfolio)
	assert.Equal(t, "p-1", a.PortfolioID)
	assert.Nil(t, a.OccurredAt)
}

func TestBalanceEvaluator_RemovedSymbolUsesPreviousPrice(t *testing.T) {
	eval := NewBalanceEvaluator(NewThresholdRegistry(DefaultThreshold, nil), false, nil)

	alerts := eval.Evaluate(
		balanceSnapshot(map[string]float64{"SOL": 500}, map[string]float64{"SOL": 100}),
		balanceSnapshot(map[string]float64{}, map[string]float64{}),
	)

	require.Len(t, alerts, 1)
	assert.Equal(t, 50000.0, alerts[0].QuoteValue)
}

func TestBalanceEvaluator_Baseline(t *testing.T) {
	current := balanceSnapshot(map[string]float64{"BTC": 20}, map[string]float64{"BTC": 40000})
	thresholds := NewThresholdRegistry(DefaultThreshold, nil)

	assert.Len(t, NewBalanceEvaluator(thresholds, false, nil).Evaluate(nil, current), 1)
	assert.Empty(t, NewBalanceEvaluator(thresholds, true, nil).Evaluate(nil, current))
}

func TestTransferStrategy(t *testing.T) {
	occurred := fixedNow.Add(-3 * time.Hour)
	source := transferSourceFunc(func(_ context.Context, target entity.Target) ([]entity.Transfer, error) {
		return []entity.Transfer{
			{Symbol: "btc", Amount: 20, FromAddress: "0xfrom", ToAddress: target.Address, OccurredAt: occurred},
			{Chain: "BSC", Symbol: "BNB", Amount: 10, FromAddress: "0xfrom", ToAddress: target.Address, OccurredAt: occurred},
		}, nil
	})
	fetcher := NewTransferFetcher(source, staticQuotes{"BTC": 43250, "BNB": 312.75}, fixedClock)
	target := entity.Target{Chain: "Bitcoin", Address: "bc1q"}

	snap, err := fetcher.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, snap.Transfers, 2)
	assert.InDelta(t, 20*43250+10*312.75, snap.TotalQuoteValue, 1e-6)

	alerts := NewTransferEvaluator(NewThresholdRegistry(DefaultThreshold, nil)).Evaluate(nil, snap)

	// 20 BTC = 865000 >= 500000, 10 BNB = 3127.5 < 25000
	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, entity.AlertTransfer, a.Kind)
	assert.Equal(t, "Bitcoin", a.Chain)
	assert.Equal(t, "BTC", a.Symbol)
	assert.Equal(t, "0xfrom", a.FromAddress)
	assert.Equal(t, "bc1q", a.ToAddress)
	require.NotNil(t, a.OccurredAt)
	assert.Equal(t, occurred, *a.OccurredAt)
	assert.Equal(t, fixedNow, a.DetectedAt)
	assert.False(t, math.IsNaN(a.QuoteValue))
	assert.Contains(t, a.String(), "WHALE ALERT - Bitcoin: 20.00 BTC")
}
