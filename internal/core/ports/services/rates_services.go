package services

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RatesSvcFacade is the currency normalizer: one consistent rate snapshot
// per logical operation, with distinct write-path and read-path failure
// policies.
type RatesSvcFacade interface {
	// Snapshot returns a fresh-enough rate snapshot for financial writes.
	// It fails with apperrors.ErrRatesUnavailable instead of ever serving
	// stale or default rates to a write.
	Snapshot(ctx context.Context) (domain.RateSnapshot, error)

	// DisplaySnapshot returns a snapshot for read-only display conversion.
	// On provider failure it falls back to the last known snapshot with the
	// Stale flag set; it errors only when no snapshot was ever fetched.
	DisplaySnapshot(ctx context.Context) (domain.RateSnapshot, error)

	// Normalize converts an entry amount into the storage anchor currency
	// when the entry currency is in the convertible allow-list, retaining
	// the original amount and currency. Any other currency passes through
	// unchanged.
	Normalize(ctx context.Context, amount decimal.Decimal, currency string) (domain.NormalizedAmount, error)
}
