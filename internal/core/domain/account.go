package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a user's financial account within the core domain.
// Balance is not a column of truth: it is derived on read as
// initial_balance plus the sum of the account's transaction amounts, both
// expressed in the account's native currency.
type Account struct {
	AccountID      string          `json:"accountID"`
	OwnerID        string          `json:"ownerID"`
	Name           string          `json:"name"` // Unique per owner
	Color          string          `json:"color"`
	CurrencyCode   string          `json:"currencyCode"`   // Native currency, immutable after creation
	InitialBalance decimal.Decimal `json:"initialBalance"` // Stored in the native currency
	IsAvailable    bool            `json:"isAvailable"`
	SortOrder      int             `json:"sortOrder"`
	AuditFields
}

// AccountBalance pairs an account with its derived balance and the same
// balance converted once into the owner's display currency.
type AccountBalance struct {
	Account
	Balance         decimal.Decimal `json:"balance"` // Native currency
	DisplayBalance  decimal.Decimal `json:"displayBalance"`
	DisplayCurrency string          `json:"displayCurrency"`
	RatesStale      bool            `json:"ratesStale"` // Display conversion used a stale snapshot
}
