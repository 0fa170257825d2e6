package services

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/budgetbook/backend/internal/dto"
)

// LedgerSvcFacade owns accounts and transactions: derived balances, entry
// time currency normalization, and the deletion guards.
type LedgerSvcFacade interface {
	// ListAccounts returns the owner's accounts with derived balances,
	// converted once into the owner's display currency using one rate
	// snapshot for the whole call.
	ListAccounts(ctx context.Context, ownerID string) ([]domain.AccountBalance, error)

	// CreateAccount creates a new account for the owner.
	CreateAccount(ctx context.Context, ownerID string, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount updates mutable account fields. The native currency
	// cannot change.
	UpdateAccount(ctx context.Context, ownerID, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// DeleteAccount deletes an unreferenced account, failing with
	// apperrors.ErrInUse otherwise.
	DeleteAccount(ctx context.Context, ownerID, accountID string) error

	// PostTransaction validates, normalizes and persists a new transaction.
	PostTransaction(ctx context.Context, ownerID string, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateTransaction overwrites all mutable fields of an owned
	// transaction, re-applying normalization.
	UpdateTransaction(ctx context.Context, ownerID, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction removes an owned transaction; a miss is a silent
	// no-op.
	DeleteTransaction(ctx context.Context, ownerID, transactionID string) error

	// BulkDeleteTransactions removes the owned subset of the given ids and
	// reports how many rows were deleted.
	BulkDeleteTransactions(ctx context.Context, ownerID string, transactionIDs []string) (int64, error)

	// ListTransactions returns one page of the owner's transactions.
	ListTransactions(ctx context.Context, ownerID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
