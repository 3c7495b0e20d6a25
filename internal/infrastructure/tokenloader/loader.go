package tokenloader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
	"wallet_monitor/internal/pkg/utils"
)

// TokenFileLoader implements the port.TokenProvider interface. It reads one
// JSON file per network, named after the network identifier.
type TokenFileLoader struct {
	tokenDirPath string
	logger       *slog.Logger
}

// NewTokenLoader creates a new TokenFileLoader reading from dir.
func NewTokenLoader(dir string, logger *slog.Logger) port.TokenProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenFileLoader{tokenDirPath: dir, logger: logger}
}

// GetTokensByNetwork reads <identifier>.json for every given network and
// returns its tokens keyed by identifier. Tokens whose chain ID does not match
// the network are dropped. A missing directory yields no tokens.
func (l *TokenFileLoader) GetTokensByNetwork(networks []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error) {
	tokensByNetwork := make(map[string][]entity.TokenInfo)

	if _, err := os.Stat(l.tokenDirPath); err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("Token directory not found, only native balances will be read", "path", l.tokenDirPath)
			return tokensByNetwork, nil
		}
		return nil, fmt.Errorf("failed to stat token directory %s: %w", l.tokenDirPath, err)
	}

	for _, def := range networks {
		filePath := filepath.Join(l.tokenDirPath, strings.ToLower(def.Identifier)+".json")
		tokens, err := utils.LoadTokensFromJSON(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				l.logger.Debug("No token file for network", "network_identifier", def.Identifier, "path", filePath)
			} else {
				l.logger.Warn("Failed to load token file, skipping file.", "path", filePath, "error", err)
			}
			continue
		}

		valid := make([]entity.TokenInfo, 0, len(tokens))
		for _, token := range tokens {
			if token.ChainID != def.ChainID {
				l.logger.Warn("Token has mismatched ChainID in file, skipping token.",
					"file", filePath, "token_symbol", token.Symbol, "token_chain_id", token.ChainID,
					"expected_chain_id", def.ChainID)
				continue
			}
			valid = append(valid, token)
		}
		if len(valid) > 0 {
			tokensByNetwork[def.Identifier] = valid
			l.logger.Info("Loaded tokens for network", "network_identifier", def.Identifier, "count", len(valid))
		}
	}
	return tokensByNetwork, nil
}
