// Package rates implements the outbound exchange rate provider against an
// HTTP JSON endpoint of the frankfurter.app shape: {"base": "EUR",
// "rates": {"USD": 1.0831, ...}}.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetbook/backend/internal/core/ports/providers"
)

// HTTPProvider fetches exchange rates from a configured URL. It performs a
// single GET per call; caching and staleness policy live in the rates
// service, not here.
type HTTPProvider struct {
	client  *http.Client
	url     string
	baseCur string
}

// NewHTTPProvider creates a provider for the given endpoint. A nil client
// falls back to a default with a 30 second timeout.
func NewHTTPProvider(url, baseCurrency string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPProvider{
		client:  client,
		url:     url,
		baseCur: baseCurrency,
	}
}

var _ providers.ExchangeRateProvider = (*HTTPProvider)(nil)

type ratesPayload struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FetchRates retrieves the current rate table quoted against the provider's
// base currency.
func (p *HTTPProvider) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if p.url == "" {
		return nil, fmt.Errorf("rates endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rates endpoint returned status %d", resp.StatusCode)
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if payload.Base != "" && payload.Base != p.baseCur {
		return nil, fmt.Errorf("rates endpoint returned base %s, expected %s", payload.Base, p.baseCur)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates endpoint returned no rates")
	}

	return payload.Rates, nil
}
