package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/budgetbook/backend/internal/core/ports/providers"
	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/middleware"
)

// ratesService caches one provider fetch process-wide for the configured TTL
// and de-duplicates in-flight fetches, so concurrent requests share a single
// provider call and every conversion within one request uses a consistent
// snapshot.
type ratesService struct {
	provider     providers.ExchangeRateProvider
	baseCurrency string
	convertible  map[string]struct{}
	ttl          time.Duration
	fetchTimeout time.Duration

	mu       sync.RWMutex
	snapshot *domain.RateSnapshot

	group singleflight.Group
}

// NewRatesService creates the currency normalizer backed by the given
// provider. Convertible currencies are normalized to baseCurrency at write
// time; everything else is stored as entered.
func NewRatesService(provider providers.ExchangeRateProvider, baseCurrency string, convertible []string, ttl, fetchTimeout time.Duration) portssvc.RatesSvcFacade {
	set := make(map[string]struct{}, len(convertible))
	for _, code := range convertible {
		set[code] = struct{}{}
	}
	return &ratesService{
		provider:     provider,
		baseCurrency: baseCurrency,
		convertible:  set,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
	}
}

var _ portssvc.RatesSvcFacade = (*ratesService)(nil)

func (s *ratesService) cached() *domain.RateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// refresh fetches a new snapshot through singleflight so that concurrent
// callers with an expired cache trigger exactly one provider call.
func (s *ratesService) refresh(ctx context.Context) (*domain.RateSnapshot, error) {
	result, err, _ := s.group.Do("rates", func() (interface{}, error) {
		// Another caller may have refreshed while we waited on the flight.
		if snap := s.cached(); snap != nil && time.Since(snap.FetchedAt) < s.ttl {
			return snap, nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()

		rates, err := s.provider.FetchRates(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrRatesUnavailable, err)
		}

		snap := &domain.RateSnapshot{
			Base:      s.baseCurrency,
			Rates:     rates,
			FetchedAt: time.Now(),
		}
		s.mu.Lock()
		s.snapshot = snap
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.RateSnapshot), nil
}

// Snapshot implements the write-path policy: a fresh-enough snapshot or
// ErrRatesUnavailable. Stale rates are never used for financial writes.
func (s *ratesService) Snapshot(ctx context.Context) (domain.RateSnapshot, error) {
	if snap := s.cached(); snap != nil && time.Since(snap.FetchedAt) < s.ttl {
		return *snap, nil
	}
	snap, err := s.refresh(ctx)
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	return *snap, nil
}

// DisplaySnapshot implements the read-path policy: prefer a fresh snapshot,
// fall back to the last known one flagged stale when the provider is down.
func (s *ratesService) DisplaySnapshot(ctx context.Context) (domain.RateSnapshot, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if snap := s.cached(); snap != nil && time.Since(snap.FetchedAt) < s.ttl {
		return *snap, nil
	}

	snap, err := s.refresh(ctx)
	if err == nil {
		return *snap, nil
	}

	if last := s.cached(); last != nil {
		logger.Warn("Serving stale rate snapshot for display", "fetched_at", last.FetchedAt, "error", err.Error())
		stale := *last
		stale.Stale = true
		return stale, nil
	}
	return domain.RateSnapshot{}, err
}

// Normalize converts an entry amount to the storage anchor when its currency
// is allow-listed, preserving the user's original input. Non-convertible
// currencies pass through unchanged.
func (s *ratesService) Normalize(ctx context.Context, amount decimal.Decimal, currency string) (domain.NormalizedAmount, error) {
	if _, ok := s.convertible[currency]; !ok || currency == s.baseCurrency {
		return domain.NormalizedAmount{Amount: amount, Currency: currency}, nil
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.NormalizedAmount{}, err
	}

	converted, err := snap.Convert(amount, currency, s.baseCurrency)
	if err != nil {
		return domain.NormalizedAmount{}, fmt.Errorf("%w: %v", apperrors.ErrRatesUnavailable, err)
	}

	original := amount
	originalCurrency := currency
	return domain.NormalizedAmount{
		Amount:           converted,
		Currency:         s.baseCurrency,
		OriginalAmount:   &original,
		OriginalCurrency: &originalCurrency,
	}, nil
}
