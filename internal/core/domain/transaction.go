package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single ledger movement on an account. Amount is signed:
// negative for expenses and withdrawals, positive for income and deposits.
// The sign convention is applied by the services, not the database.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	OwnerID       string          `json:"ownerID"`
	AccountID     string          `json:"accountID"`
	CategoryID    string          `json:"categoryID"`
	SubcategoryID *string         `json:"subcategoryID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"` // Currency the amount was stored in, post-normalization
	// OriginalAmount and OriginalCurrency are set only when an entry-time
	// conversion occurred, so the user's original input can be redisplayed.
	OriginalAmount   *decimal.Decimal `json:"originalAmount,omitempty"`
	OriginalCurrency *string          `json:"originalCurrency,omitempty"`
	Note             string           `json:"note"`
	EffectiveDate    time.Time        `json:"effectiveDate"`
	AuditFields
}

// Converted reports whether an entry-time currency conversion took place.
func (t Transaction) Converted() bool {
	return t.OriginalAmount != nil && t.OriginalCurrency != nil
}
