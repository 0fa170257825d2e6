package dto

import (
	"time"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required"`
	Color          string          `json:"color"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	SortOrder      int             `json:"sortOrder"`
}

// UpdateAccountRequest defines the fields that may change after creation.
// The native currency is deliberately absent: changing it would reinterpret
// every amount already posted under the account.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	IsAvailable *bool   `json:"isAvailable"`
	SortOrder   *int    `json:"sortOrder"`
}

// AccountResponse defines the data returned for an account, including the
// derived balance and its display-currency conversion.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	Name            string          `json:"name"`
	Color           string          `json:"color"`
	CurrencyCode    string          `json:"currencyCode"`
	InitialBalance  decimal.Decimal `json:"initialBalance"`
	Balance         decimal.Decimal `json:"balance"`
	DisplayBalance  decimal.Decimal `json:"displayBalance"`
	DisplayCurrency string          `json:"displayCurrency"`
	RatesStale      bool            `json:"ratesStale,omitempty"`
	IsAvailable     bool            `json:"isAvailable"`
	SortOrder       int             `json:"sortOrder"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.AccountBalance to its response DTO.
func ToAccountResponse(ab *domain.AccountBalance) AccountResponse {
	return AccountResponse{
		AccountID:       ab.AccountID,
		Name:            ab.Name,
		Color:           ab.Color,
		CurrencyCode:    ab.CurrencyCode,
		InitialBalance:  ab.InitialBalance,
		Balance:         ab.Balance,
		DisplayBalance:  ab.DisplayBalance,
		DisplayCurrency: ab.DisplayCurrency,
		RatesStale:      ab.RatesStale,
		IsAvailable:     ab.IsAvailable,
		SortOrder:       ab.SortOrder,
		CreatedAt:       ab.CreatedAt,
		LastUpdatedAt:   ab.LastUpdatedAt,
	}
}

// AccountDetailsResponse defines the account fields without derived
// balances. Create and update return it because no balance computation runs
// on those paths.
type AccountDetailsResponse struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"`
	Color          string          `json:"color"`
	CurrencyCode   string          `json:"currencyCode"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	IsAvailable    bool            `json:"isAvailable"`
	SortOrder      int             `json:"sortOrder"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToAccountDetailsResponse converts a domain.Account to its response DTO.
func ToAccountDetailsResponse(a *domain.Account) AccountDetailsResponse {
	return AccountDetailsResponse{
		AccountID:      a.AccountID,
		Name:           a.Name,
		Color:          a.Color,
		CurrencyCode:   a.CurrencyCode,
		InitialBalance: a.InitialBalance,
		IsAvailable:    a.IsAvailable,
		SortOrder:      a.SortOrder,
		CreatedAt:      a.CreatedAt,
		LastUpdatedAt:  a.LastUpdatedAt,
	}
}

// ToListAccountsResponse converts a slice of balances to response DTOs.
func ToListAccountsResponse(balances []domain.AccountBalance) []AccountResponse {
	res := make([]AccountResponse, len(balances))
	for i := range balances {
		res[i] = ToAccountResponse(&balances[i])
	}
	return res
}
