package repositories

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsWithBalances retrieves the owner's accounts together with
	// their derived native-currency balances. Display conversion is the
	// caller's concern.
	ListAccountsWithBalances(ctx context.Context, ownerID string) ([]domain.AccountBalance, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when
	// the owner already has an account of the same name.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount deletes an account. Returns apperrors.ErrInUse when
	// transactions still reference it.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountTransactionSupport defines operations used inside multi-statement
// database transactions, such as the transfer orchestration and cached
// balance maintenance.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for update
	// within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// AdjustCachedBalancesInTx applies per-account balance deltas within a
	// transaction. Only meaningful under the cached balance strategy.
	AdjustCachedBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
