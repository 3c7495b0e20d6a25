package port

import "context"

// QuoteSource returns the current price of a token symbol in the quote currency.
// Implementations may be slow, rate limited or cached; the engine treats every
// call as best-effort.
type QuoteSource interface {
	Price(ctx context.Context, symbol string) (float64, error)
}
