package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest moves funds between two of the caller's accounts.
// FromAmount and ToAmount may differ when the accounts have different native
// currencies; the caller supplies the converted target amount. Signs are
// ignored: the orchestrator posts |FromAmount| as a withdrawal and
// |ToAmount| as a deposit.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID" binding:"required,nefield=FromAccountID"`
	FromAmount    decimal.Decimal `json:"fromAmount" binding:"required"`
	ToAmount      decimal.Decimal `json:"toAmount" binding:"required"`
	Note          string          `json:"note"`
	Date          time.Time       `json:"date" binding:"required"`
}

// TransferResponse returns both posted legs of a completed transfer.
type TransferResponse struct {
	Withdrawal TransactionResponse `json:"withdrawal"`
	Deposit    TransactionResponse `json:"deposit"`
}
