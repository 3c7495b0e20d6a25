package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

var ethereum = entity.NetworkDefinition{Identifier: "ethereum", Name: "Ethereum Mainnet", NativeSymbol: "ETH", Decimals: 18}

type MockBlockchainClient struct {
	mock.Mock
}

func (m *MockBlockchainClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	args := m.Called(ctx, requests)
	res, _ := args.Get(0).([]entity.BalanceResultItem)
	return res, args.Error(1)
}

func (m *MockBlockchainClient) Definition() entity.NetworkDefinition {
	return ethereum
}

type staticNetworks map[string]entity.NetworkDefinition

func (n staticNetworks) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(n))
	for _, d := range n {
		out = append(out, d)
	}
	return out
}

func (n staticNetworks) GetNetworkDefinitionByName(name string) (entity.NetworkDefinition, bool) {
	d, ok := n[name]
	return d, ok
}

type staticClients struct{ client port.BlockchainClient }

func (c staticClients) GetClient(entity.NetworkDefinition) (port.BlockchainClient, error) {
	return c.client, nil
}

func wei(s string) *big.Int {
	v, _ := new(big.Int).SetString(s, 10)
	return v
}

func TestEVMBalanceSource_Balances(t *testing.T) {
	client := new(MockBlockchainClient)
	tokens := map[string][]entity.TokenInfo{
		"ethereum": {
			{ChainID: 1, Address: "0xusdc", Symbol: "USDC", Decimals: 6},
			{ChainID: 1, Address: "0xdai", Symbol: "DAI", Decimals: 18},
		},
	}
	src := NewEVMBalanceSource(staticNetworks{"Ethereum": ethereum}, staticClients{client}, tokens, 2, nil)

	client.On("GetBalances", mock.Anything, mock.MatchedBy(func(r []entity.BalanceRequestItem) bool {
		return len(r) == 2 && r[0].Type == entity.NativeBalanceRequest && r[1].TokenSymbol == "USDC"
	})).Return([]entity.BalanceResultItem{
		{TokenSymbol: "ETH", Decimals: 18, Balance: wei("1500000000000000000")},
		{TokenSymbol: "USDC", Decimals: 6, Balance: big.NewInt(2_500_000)},
	}, nil).Once()
	client.On("GetBalances", mock.Anything, mock.MatchedBy(func(r []entity.BalanceRequestItem) bool {
		return len(r) == 1 && r[0].TokenSymbol == "DAI"
	})).Return([]entity.BalanceResultItem{
		{TokenSymbol: "DAI", Decimals: 18, Balance: big.NewInt(0)},
	}, nil).Once()

	balances, err := src.Balances(context.Background(), entity.Target{Chain: "Ethereum", Address: "0xabc"})

	require.NoError(t, err)
	assert.InDelta(t, 1.5, balances["ETH"], 1e-12)
	assert.InDelta(t, 2.5, balances["USDC"], 1e-12)
	assert.NotContains(t, balances, "DAI")
	client.AssertExpectations(t)
}

func TestEVMBalanceSource_Failures(t *testing.T) {
	target := entity.Target{Chain: "Ethereum", Address: "0xabc"}

	t.Run("unknown network", func(t *testing.T) {
		src := NewEVMBalanceSource(staticNetworks{}, staticClients{}, nil, 0, nil)
		_, err := src.Balances(context.Background(), target)
		assert.Error(t, err)
	})

	t.Run("item error fails read", func(t *testing.T) {
		client := new(MockBlockchainClient)
		client.On("GetBalances", mock.Anything, mock.Anything).Return([]entity.BalanceResultItem{
			{TokenSymbol: "ETH", Error: errors.New("header not found")},
		}, nil)
		src := NewEVMBalanceSource(staticNetworks{"Ethereum": ethereum}, staticClients{client}, nil, 0, nil)

		_, err := src.Balances(context.Background(), target)
		assert.ErrorContains(t, err, "header not found")
	})

	t.Run("batch error", func(t *testing.T) {
		client := new(MockBlockchainClient)
		client.On("GetBalances", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
		src := NewEVMBalanceSource(staticNetworks{"Ethereum": ethereum}, staticClients{client}, nil, 0, nil)

		_, err := src.Balances(context.Background(), target)
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestSimulatedBalanceSource(t *testing.T) {
	src := NewSimulatedBalanceSource(1)
	allowed := map[string]bool{"BTC": true, "ETH": true, "BNB": true, "SOL": true, "ADA": true, "XRP": true}

	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		balances, err := src.Balances(context.Background(), entity.Target{Chain: "Ethereum", Address: "0xabc"})
		require.NoError(t, err)
		for symbol, qty := range balances {
			assert.True(t, allowed[symbol], symbol)
			assert.GreaterOrEqual(t, qty, 0.0)
			assert.Less(t, qty, 100.0)
			seen[symbol]++
		}
	}
	// every symbol is held roughly 60% of the time
	for symbol := range allowed {
		assert.InDelta(t, 120, seen[symbol], 40, symbol)
	}
}

func TestSimulatedTransferSource(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	src := NewSimulatedTransferSource(3, func() time.Time { return now })
	target := entity.Target{Chain: "Bitcoin", Address: "bc1qwatched"}

	for i := 0; i < 100; i++ {
		transfers, err := src.Transfers(context.Background(), target)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(transfers), 1)
		require.LessOrEqual(t, len(transfers), 3)

		for _, tx := range transfers {
			assert.Equal(t, "Bitcoin", tx.Chain)
			assert.Equal(t, "bc1qwatched", tx.ToAddress)
			assert.Len(t, tx.FromAddress, 42)
			assert.False(t, tx.OccurredAt.After(now))
			assert.True(t, tx.OccurredAt.After(now.Add(-24*time.Hour)))
			switch tx.Symbol {
			case "BTC":
				assert.True(t, tx.Amount >= 10 && tx.Amount < 60)
			case "ETH":
				assert.True(t, tx.Amount >= 100 && tx.Amount < 600)
			case "BNB", "SOL":
				assert.True(t, tx.Amount >= 1000 && tx.Amount < 11000)
			default:
				t.Fatalf("unexpected symbol %s", tx.Symbol)
			}
		}
	}
}

func TestSimulatedSources_RespectCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulatedBalanceSource(1).Balances(ctx, entity.Target{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = NewSimulatedTransferSource(1, nil).Transfers(ctx, entity.Target{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBalanceRouter(t *testing.T) {
	evm := NewEVMBalanceSource(staticNetworks{}, staticClients{}, nil, 0, nil)
	router := NewBalanceRouter(NewSimulatedBalanceSource(5)).Route("Ethereum", evm)

	_, err := router.Balances(context.Background(), entity.Target{Chain: "ETHEREUM", Address: "0x1"})
	assert.Error(t, err, "routed to the EVM source which knows no networks")

	_, err = router.Balances(context.Background(), entity.Target{Chain: "Bitcoin", Address: "bc1"})
	assert.NoError(t, err)

	_, err = NewBalanceRouter(nil).Balances(context.Background(), entity.Target{Chain: "Bitcoin", Address: "bc1"})
	assert.Error(t, err)
}
