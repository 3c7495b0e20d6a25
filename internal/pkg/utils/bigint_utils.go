package utils

import (
	"math/big"
	"strings"
)

const floatPrec = 256

func scale(decimals uint8) *big.Float {
	return new(big.Float).SetPrec(floatPrec).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

// FormatBigInt converts a big.Int value to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	value := new(big.Float).SetPrec(floatPrec).Quo(new(big.Float).SetPrec(floatPrec).SetInt(amount), scale(decimals))
	formatted := value.Text('f', int(decimals))
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	if formatted == "" || formatted == "-0" {
		return "0"
	}
	return formatted
}

// BigIntToFloat converts a base-unit amount into a float64 quantity.
func BigIntToFloat(amount *big.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	f, _ := new(big.Float).SetPrec(floatPrec).Quo(new(big.Float).SetPrec(floatPrec).SetInt(amount), scale(decimals)).Float64()
	return f
}
