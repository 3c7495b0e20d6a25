package client

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
	defaultRPCCallTimeout            = 10 * time.Second
)

// evmClientProvider implements the port.BlockchainClientProvider interface.
type evmClientProvider struct {
	clients           map[string]port.BlockchainClient
	mu                sync.Mutex
	logger            *zap.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	dial              func(def entity.NetworkDefinition, connTimeout, callTimeout time.Duration) (port.BlockchainClient, error)
}

// NewEVMClientProvider creates a provider caching one client per network.
func NewEVMClientProvider(rpcCallTimeout time.Duration, logger *zap.Logger) port.BlockchainClientProvider {
	if rpcCallTimeout <= 0 {
		rpcCallTimeout = defaultRPCCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &evmClientProvider{
		clients:           make(map[string]port.BlockchainClient),
		logger:            logger.Named("EVMClientProvider"),
		connectionTimeout: defaultProviderConnectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
		dial:              NewEVMClient,
	}
}

// GetClient retrieves a blockchain client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *evmClientProvider) GetClient(netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.Identifier]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", zap.String("network", netDef.Identifier), zap.String("rpcPrimary", netDef.PrimaryRPCURL))
	newClient, err := p.dial(netDef, p.connectionTimeout, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", zap.String("network", netDef.Identifier), zap.Error(err))
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Identifier, err)
	}

	p.clients[netDef.Identifier] = newClient
	return newClient, nil
}
