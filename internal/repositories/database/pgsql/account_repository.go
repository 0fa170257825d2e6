package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
	// cacheBalances selects the balance strategy: when true the listing
	// reads the maintained cached_balance column instead of summing
	// transactions at query time.
	cacheBalances bool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool DBPool, cacheBalances bool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}, cacheBalances: cacheBalances}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, owner_id, name, color, currency_code, initial_balance, is_available, sort_order, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.OwnerID,
		&acc.Name,
		&acc.Color,
		&acc.CurrencyCode,
		&acc.InitialBalance,
		&acc.IsAvailable,
		&acc.SortOrder,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// ListAccountsWithBalances retrieves the owner's accounts with their derived
// native-currency balances, ordered by sort order then name. Under the
// derived strategy the balance is initial_balance plus the sum of the
// account's transaction amounts; under the cached strategy it is
// initial_balance plus the maintained cached_balance column.
func (r *PgxAccountRepository) ListAccountsWithBalances(ctx context.Context, ownerID string) ([]domain.AccountBalance, error) {
	var query string
	if r.cacheBalances {
		query = `
			SELECT a.account_id, a.owner_id, a.name, a.color, a.currency_code, a.initial_balance, a.is_available, a.sort_order,
			       a.created_at, a.created_by, a.last_updated_at, a.last_updated_by,
			       a.initial_balance + a.cached_balance AS balance
			FROM accounts a
			WHERE a.owner_id = $1
			ORDER BY a.sort_order, a.name;
		`
	} else {
		query = `
			SELECT a.account_id, a.owner_id, a.name, a.color, a.currency_code, a.initial_balance, a.is_available, a.sort_order,
			       a.created_at, a.created_by, a.last_updated_at, a.last_updated_by,
			       a.initial_balance + COALESCE(SUM(t.amount), 0) AS balance
			FROM accounts a
			LEFT JOIN transactions t ON t.account_id = a.account_id
			WHERE a.owner_id = $1
			GROUP BY a.account_id
			ORDER BY a.sort_order, a.name;
		`
	}

	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	balances := []domain.AccountBalance{}
	for rows.Next() {
		var ab domain.AccountBalance
		err := rows.Scan(
			&ab.AccountID,
			&ab.OwnerID,
			&ab.Name,
			&ab.Color,
			&ab.CurrencyCode,
			&ab.InitialBalance,
			&ab.IsAvailable,
			&ab.SortOrder,
			&ab.CreatedAt,
			&ab.CreatedBy,
			&ab.LastUpdatedAt,
			&ab.LastUpdatedBy,
			&ab.Balance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for owner %s: %w", ownerID, err)
		}
		balances = append(balances, ab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows for owner %s: %w", ownerID, err)
	}

	return balances, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, owner_id, name, color, currency_code, initial_balance, is_available, sort_order, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.OwnerID,
		account.Name,
		account.Color,
		account.CurrencyCode,
		account.InitialBalance,
		account.IsAvailable,
		account.SortOrder,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account named %q already exists", apperrors.ErrDuplicate, account.Name)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// UpdateAccount updates an existing account's mutable details. The currency
// code is deliberately not part of the SET list: it is immutable after
// creation.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, color = $3, initial_balance = $4, is_available = $5, sort_order = $6, last_updated_at = $7, last_updated_by = $8
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Color,
		account.InitialBalance,
		account.IsAvailable,
		account.SortOrder,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account named %q already exists", apperrors.ErrDuplicate, account.Name)
		}
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAccount deletes an account. Transactions keep a RESTRICT foreign key
// on accounts, so a referenced account surfaces as ErrInUse rather than
// cascading ledger history away.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: account still has transactions", apperrors.ErrInUse)
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsForUpdate selects accounts and locks them for update
// within the given transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) FOR UPDATE;`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accounts[acc.AccountID] = *acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}
	return accounts, nil
}

// AdjustCachedBalancesInTx applies per-account balance deltas within the
// given transaction. A no-op under the derived strategy.
func (r *PgxAccountRepository) AdjustCachedBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal) error {
	if !r.cacheBalances || len(deltas) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for accountID, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		batch.Queue(`UPDATE accounts SET cached_balance = cached_balance + $2 WHERE account_id = $1;`, accountID, delta)
	}
	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to adjust cached balance: %w", err)
		}
	}
	return nil
}
