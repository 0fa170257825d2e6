package providers

import (
	"context"

	"github.com/shopspring/decimal"
)

// ExchangeRateProvider returns current rates for the convertible currency
// set, quoted against the application's anchor currency. Implementations
// must honour the context deadline: write-path conversions fail fast rather
// than hang on a slow provider.
type ExchangeRateProvider interface {
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}
