package entity

import "math/big"

// BalanceRequestType defines the type of an on-chain balance lookup.
type BalanceRequestType int

const (
	// NativeBalanceRequest looks up the native coin balance of an address.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest looks up an ERC20 balanceOf for an address.
	TokenBalanceRequest
)

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequestItem is one element of a JSON-RPC batch.
type BalanceRequestItem struct {
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	TokenDecimals uint8
}

// BalanceResultItem is the decoded answer to one BalanceRequestItem.
type BalanceResultItem struct {
	TokenSymbol string
	Decimals    uint8
	Balance     *big.Int
	Error       error
}
