package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot is one consistent set of exchange rates, fetched once per
// logical operation so that every conversion within a request uses the same
// rates. Rates are quoted against the anchor currency: Rates[code] is the
// number of units of code per one unit of Base. The anchor itself always has
// rate 1.
type RateSnapshot struct {
	Base      string
	Rates     map[string]decimal.Decimal
	FetchedAt time.Time
	// Stale marks a snapshot served from cache after a provider failure.
	// Stale snapshots are acceptable for display conversion only, never for
	// financial writes.
	Stale bool
}

// Rate returns the quoted rate for a currency code.
func (s RateSnapshot) Rate(code string) (decimal.Decimal, error) {
	if code == s.Base {
		return decimal.NewFromInt(1), nil
	}
	r, ok := s.Rates[code]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("no rate for currency %s", code)
	}
	if r.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("zero rate for currency %s", code)
	}
	return r, nil
}

// NormalizedAmount is the outcome of entry-time normalization. When a
// conversion occurred, the original user input is preserved for redisplay.
type NormalizedAmount struct {
	Amount           decimal.Decimal
	Currency         string
	OriginalAmount   *decimal.Decimal
	OriginalCurrency *string
}

// Convert converts an amount between two currencies using this snapshot:
// amount / rate[from] * rate[to]. Identity conversion returns the amount
// unchanged with no rounding drift.
func (s RateSnapshot) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	fromRate, err := s.Rate(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := s.Rate(to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.DivRound(fromRate, 10).Mul(toRate).Round(4), nil
}
