package port

import "wallet_monitor/internal/domain/entity"

// TokenProvider defines the interface for fetching ERC20 token definitions.
type TokenProvider interface {
	// GetTokensByNetwork returns the tokens of every given network keyed by network identifier.
	GetTokensByNetwork(networks []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error)
}
