package dto

import (
	"time"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to post a transaction.
// Amount is signed: negative for expenses, positive for income.
type CreateTransactionRequest struct {
	AccountID     string          `json:"accountID" binding:"required"`
	CategoryID    string          `json:"categoryID" binding:"required"`
	SubcategoryID *string         `json:"subcategoryID"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode  string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Note          string          `json:"note"`
	EffectiveDate time.Time       `json:"effectiveDate" binding:"required"`
}

// UpdateTransactionRequest overwrites all mutable transaction fields,
// re-applying entry-time normalization.
type UpdateTransactionRequest struct {
	AccountID     string          `json:"accountID" binding:"required"`
	CategoryID    string          `json:"categoryID" binding:"required"`
	SubcategoryID *string         `json:"subcategoryID"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode  string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Note          string          `json:"note"`
	EffectiveDate time.Time       `json:"effectiveDate" binding:"required"`
}

// BulkDeleteTransactionsRequest names the transactions to delete. Rows not
// owned by the caller are skipped silently.
type BulkDeleteTransactionsRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	AccountID string  `form:"accountID"`
	Month     string  `form:"month"` // "2006-01", optional
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID    string           `json:"transactionID"`
	AccountID        string           `json:"accountID"`
	CategoryID       string           `json:"categoryID"`
	SubcategoryID    *string          `json:"subcategoryID,omitempty"`
	Amount           decimal.Decimal  `json:"amount"`
	CurrencyCode     string           `json:"currencyCode"`
	OriginalAmount   *decimal.Decimal `json:"originalAmount,omitempty"`
	OriginalCurrency *string          `json:"originalCurrency,omitempty"`
	Note             string           `json:"note"`
	EffectiveDate    time.Time        `json:"effectiveDate"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// ListTransactionsResponse carries one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:    t.TransactionID,
		AccountID:        t.AccountID,
		CategoryID:       t.CategoryID,
		SubcategoryID:    t.SubcategoryID,
		Amount:           t.Amount,
		CurrencyCode:     t.CurrencyCode,
		OriginalAmount:   t.OriginalAmount,
		OriginalCurrency: t.OriginalCurrency,
		Note:             t.Note,
		EffectiveDate:    t.EffectiveDate,
		CreatedAt:        t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions to response DTOs.
func ToTransactionResponses(ts []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(ts))
	for i := range ts {
		res[i] = ToTransactionResponse(&ts[i])
	}
	return res
}
