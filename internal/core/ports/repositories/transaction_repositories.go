package repositories

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves one page of the owner's transactions,
	// newest first, optionally filtered by account and month. Pagination is
	// cursor based on (effective_date, created_at).
	ListTransactions(ctx context.Context, ownerID string, filter TransactionFilter) ([]domain.Transaction, *string, error)
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	AccountID string
	Month     domain.Month // Zero value means no month filter
	Limit     int
	NextToken *string
}

// TransactionWriter defines write operations for ledger transactions.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction. Under the cached balance
	// strategy the account balance is adjusted in the same database
	// transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction overwrites a transaction's mutable fields. Under the
	// cached balance strategy balances are adjusted for the old and new
	// amount and account atomically with the update.
	UpdateTransaction(ctx context.Context, old, updated domain.Transaction) error

	// DeleteTransactions deletes the given transactions where owned by
	// ownerID, returning how many rows were removed. Unowned ids are skipped
	// silently. Under the cached balance strategy each affected account's
	// balance is decremented by the sum of its deleted amounts in the same
	// database transaction as the deletes.
	DeleteTransactions(ctx context.Context, ownerID string, transactionIDs []string) (int64, error)

	// SaveTransferPair atomically posts both legs of a transfer, resolving
	// or creating the owner's transfer category within the same database
	// transaction. The category id is assigned to both legs. Either both
	// rows commit or neither does.
	SaveTransferPair(ctx context.Context, withdrawal, deposit *domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
