package networkdefinition

import (
	"strings"

	"go.uber.org/zap"

	"wallet_monitor/internal/domain/entity"
)

// NetworkDefinitionProvider resolves the EVM networks balance polling can reach.
type NetworkDefinitionProvider struct {
	logger *zap.Logger
	byKey  map[string]entity.NetworkDefinition
	active []entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:         1,
		Name:            "Ethereum Mainnet",
		Identifier:      "ethereum",
		NativeSymbol:    "ETH",
		Decimals:        18,
		PrimaryRPCURL:   "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs: []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
	}
	BSC = entity.NetworkDefinition{
		ChainID:         56,
		Name:            "BNB Smart Chain",
		Identifier:      "bsc",
		NativeSymbol:    "BNB",
		Decimals:        18,
		PrimaryRPCURL:   "https://1rpc.io/bnb",
		FallbackRPCURLs: []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
	}
	Polygon = entity.NetworkDefinition{
		ChainID:         137,
		Name:            "Polygon PoS",
		Identifier:      "polygon",
		NativeSymbol:    "MATIC",
		Decimals:        18,
		PrimaryRPCURL:   "https://polygon-rpc.com/",
		FallbackRPCURLs: []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:         42161,
		Name:            "Arbitrum One",
		Identifier:      "arbitrum",
		NativeSymbol:    "ETH",
		Decimals:        18,
		PrimaryRPCURL:   "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs: []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:         43114,
		Name:            "Avalanche C-Chain",
		Identifier:      "avalanche",
		NativeSymbol:    "AVAX",
		Decimals:        18,
		PrimaryRPCURL:   "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs: []string{"https://avalanche.public-rpc.com", "https://rpc.ankr.com/avalanche"},
	}
	Base = entity.NetworkDefinition{
		ChainID:         8453,
		Name:            "Base Mainnet",
		Identifier:      "base",
		NativeSymbol:    "ETH",
		Decimals:        18,
		PrimaryRPCURL:   "https://1rpc.io/base",
		FallbackRPCURLs: []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
	}
	Optimism = entity.NetworkDefinition{
		ChainID:         10,
		Name:            "OP Mainnet",
		Identifier:      "optimism",
		NativeSymbol:    "ETH",
		Decimals:        18,
		PrimaryRPCURL:   "https://op-pokt.nodies.app",
		FallbackRPCURLs: []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
	}
)

// KnownDefinitions lists the built-in networks.
var KnownDefinitions = []entity.NetworkDefinition{Ethereum, BSC, Polygon, Arbitrum, Avalanche, Base, Optimism}

// NewNetworkDefinitionProvider activates configured networks. Entries naming a
// known identifier inherit its missing fields; an empty list activates every
// known network.
func NewNetworkDefinitionProvider(configured []entity.NetworkDefinition, logger *zap.Logger) *NetworkDefinitionProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &NetworkDefinitionProvider{
		logger: logger.Named("NetworkDefinitionProvider"),
		byKey:  make(map[string]entity.NetworkDefinition),
	}

	known := make(map[string]entity.NetworkDefinition, len(KnownDefinitions))
	for _, def := range KnownDefinitions {
		known[def.Identifier] = def
	}

	if len(configured) == 0 {
		configured = KnownDefinitions
	}
	for _, def := range configured {
		def.Identifier = strings.ToLower(strings.TrimSpace(def.Identifier))
		if base, ok := known[def.Identifier]; ok {
			def = mergeDefinition(base, def)
		}
		if def.Identifier == "" || def.PrimaryRPCURL == "" {
			p.logger.Warn("Skipping network without identifier or RPC URL", zap.String("name", def.Name), zap.String("identifier", def.Identifier))
			continue
		}
		if _, dup := p.byKey[def.Identifier]; dup {
			p.logger.Warn("Duplicate network definition, skipping", zap.String("identifier", def.Identifier))
			continue
		}
		p.active = append(p.active, def)
		p.byKey[def.Identifier] = def
		if def.Name != "" {
			p.byKey[strings.ToLower(def.Name)] = def
		}
		p.logger.Debug("Network activated", zap.String("identifier", def.Identifier), zap.Uint64("chainID", def.ChainID))
	}

	p.logger.Info("NetworkDefinitionProvider initialized", zap.Int("activeNetworks", len(p.active)))
	return p
}

func mergeDefinition(base, override entity.NetworkDefinition) entity.NetworkDefinition {
	if override.ChainID != 0 {
		base.ChainID = override.ChainID
	}
	if override.Name != "" {
		base.Name = override.Name
	}
	if override.NativeSymbol != "" {
		base.NativeSymbol = override.NativeSymbol
	}
	if override.Decimals != 0 {
		base.Decimals = override.Decimals
	}
	if override.PrimaryRPCURL != "" {
		base.PrimaryRPCURL = override.PrimaryRPCURL
		base.FallbackRPCURLs = override.FallbackRPCURLs
	}
	return base
}

// GetAllNetworkDefinitions returns the list of active network definitions.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.active))
	copy(defsCopy, p.active)
	return defsCopy
}

// GetNetworkDefinitionByName returns an active network by identifier or
// display name, case-insensitively.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.byKey[strings.ToLower(strings.TrimSpace(nameOrIdentifier))]
	return def, ok
}
