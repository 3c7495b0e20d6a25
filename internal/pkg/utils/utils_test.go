package utils

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBigInt(t *testing.T) {
	wei, _ := new(big.Int).SetString("1234500000000000000", 10)

	assert.Equal(t, "1.2345", FormatBigInt(wei, 18))
	assert.Equal(t, "0", FormatBigInt(big.NewInt(0), 18))
	assert.Equal(t, "0", FormatBigInt(nil, 6))
	assert.Equal(t, "42", FormatBigInt(big.NewInt(42), 0))
	assert.Equal(t, "2.5", FormatBigInt(big.NewInt(2_500_000), 6))
}

func TestBigIntToFloat(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)

	assert.InDelta(t, 1.5, BigIntToFloat(wei, 18), 1e-12)
	assert.InDelta(t, 2.5, BigIntToFloat(big.NewInt(2_500_000), 6), 1e-12)
	assert.Equal(t, 0.0, BigIntToFloat(nil, 18))
}

func TestBatch(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, Batch([]int{1, 2, 3}, 0))
	assert.Empty(t, Batch([]string{}, 3))
}

func TestLoadTokensFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ethereum.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"chainId":1,"address":"0xA0b8","name":"USD Coin","symbol":"USDC","decimals":6}]`), 0o600))

	tokens, err := LoadTokensFromJSON(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.Equal(t, uint8(6), tokens[0].Decimals)
	assert.Equal(t, uint64(1), tokens[0].ChainID)

	_, err = LoadTokensFromJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("WALLET_MONITOR_TEST_ENV", "  value ")
	assert.Equal(t, "value", GetEnv("WALLET_MONITOR_TEST_ENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("WALLET_MONITOR_TEST_ENV_UNSET", "fallback"))
}
