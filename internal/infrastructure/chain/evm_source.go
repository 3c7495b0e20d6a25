package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
	"wallet_monitor/internal/pkg/utils"
)

// DefaultMaxBatchSize caps the number of lookups per JSON-RPC batch.
const DefaultMaxBatchSize = 50

// EVMBalanceSource reads native and ERC20 balances of a target through
// JSON-RPC batch calls on the target's network.
type EVMBalanceSource struct {
	networks     port.NetworkDefinitionProvider
	clients      port.BlockchainClientProvider
	tokens       map[string][]entity.TokenInfo // keyed by network identifier
	maxBatchSize int
	logger       *zap.Logger
}

// NewEVMBalanceSource creates an EVM balance source. tokens lists the ERC20
// tokens checked per network identifier.
func NewEVMBalanceSource(
	networks port.NetworkDefinitionProvider,
	clients port.BlockchainClientProvider,
	tokens map[string][]entity.TokenInfo,
	maxBatchSize int,
	logger *zap.Logger,
) *EVMBalanceSource {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EVMBalanceSource{
		networks:     networks,
		clients:      clients,
		tokens:       tokens,
		maxBatchSize: maxBatchSize,
		logger:       logger.Named("EVMBalanceSource"),
	}
}

// Balances returns the non-zero holdings of target keyed by symbol. Any failed
// lookup fails the whole read, since a missing symbol would otherwise look
// like an outflow.
func (s *EVMBalanceSource) Balances(ctx context.Context, target entity.Target) (map[string]float64, error) {
	def, ok := s.networks.GetNetworkDefinitionByName(target.Chain)
	if !ok {
		return nil, fmt.Errorf("unsupported EVM network %q", target.Chain)
	}
	client, err := s.clients.GetClient(def)
	if err != nil {
		return nil, err
	}

	requests := []entity.BalanceRequestItem{{
		Type:          entity.NativeBalanceRequest,
		WalletAddress: target.Address,
		TokenAddress:  entity.ZeroAddress,
		TokenSymbol:   def.NativeSymbol,
		TokenDecimals: uint8(def.Decimals),
	}}
	for _, token := range s.tokens[def.Identifier] {
		requests = append(requests, entity.BalanceRequestItem{
			Type:          entity.TokenBalanceRequest,
			WalletAddress: target.Address,
			TokenAddress:  token.Address,
			TokenSymbol:   token.Symbol,
			TokenDecimals: token.Decimals,
		})
	}

	balances := make(map[string]float64)
	var errs []error
	for _, batch := range utils.Batch(requests, s.maxBatchSize) {
		results, err := client.GetBalances(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%s batch for %s: %w", def.Identifier, target.Address, err)
		}
		for _, res := range results {
			if res.Error != nil {
				errs = append(errs, res.Error)
				continue
			}
			if res.Balance == nil || res.Balance.Sign() == 0 {
				continue
			}
			symbol := strings.ToUpper(res.TokenSymbol)
			balances[symbol] += utils.BigIntToFloat(res.Balance, res.Decimals)
			s.logger.Debug("Balance read",
				zap.String("network", def.Identifier),
				zap.String("address", target.Address),
				zap.String("symbol", symbol),
				zap.String("balance", utils.FormatBigInt(res.Balance, res.Decimals)))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%d of %d balance lookups failed on %s: %w", len(errs), len(requests), def.Identifier, errors.Join(errs...))
	}
	return balances, nil
}
