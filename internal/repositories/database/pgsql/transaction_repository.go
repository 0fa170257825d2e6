package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
	"github.com/budgetbook/backend/internal/utils/pagination"
)

// PgxTransactionRepository persists ledger movements. Multi-statement
// operations (transfer pairs, cached balance maintenance) run inside a
// single database transaction with the sibling repositories joining in.
type PgxTransactionRepository struct {
	BaseRepository
	accountRepo  *PgxAccountRepository
	categoryRepo *PgxCategoryRepository
	// cacheBalances mirrors the account repository's strategy flag; when
	// false no balance bookkeeping happens on the write path.
	cacheBalances bool
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool DBPool, accountRepo *PgxAccountRepository, categoryRepo *PgxCategoryRepository, cacheBalances bool) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		categoryRepo:   categoryRepo,
		cacheBalances:  cacheBalances,
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, owner_id, account_id, category_id, subcategory_id, amount, currency_code, original_amount, original_currency, note, effective_date, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var subcategoryID, originalCurrency sql.NullString
	var originalAmount decimal.NullDecimal
	err := row.Scan(
		&txn.TransactionID,
		&txn.OwnerID,
		&txn.AccountID,
		&txn.CategoryID,
		&subcategoryID,
		&txn.Amount,
		&txn.CurrencyCode,
		&originalAmount,
		&originalCurrency,
		&txn.Note,
		&txn.EffectiveDate,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if subcategoryID.Valid {
		txn.SubcategoryID = &subcategoryID.String
	}
	if originalAmount.Valid {
		txn.OriginalAmount = &originalAmount.Decimal
	}
	if originalCurrency.Valid {
		txn.OriginalCurrency = &originalCurrency.String
	}
	return &txn, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions retrieves one page of the owner's transactions, newest
// first. The cursor orders on (effective_date, created_at, transaction_id)
// descending; the id tie-breaker keeps a page boundary stable even when rows
// share both timestamps.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, ownerID string, filter portsrepo.TransactionFilter) ([]domain.Transaction, *string, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = $1`)
	args := []interface{}{ownerID}

	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		sb.WriteString(` AND account_id = $` + strconv.Itoa(len(args)))
	}
	if !filter.Month.IsZero() {
		start, end := filter.Month.Bounds()
		args = append(args, start)
		sb.WriteString(` AND effective_date >= $` + strconv.Itoa(len(args)))
		args = append(args, end)
		sb.WriteString(` AND effective_date < $` + strconv.Itoa(len(args)))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursorDate, cursorCreated, cursorID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, cursorDate)
		dateArg := strconv.Itoa(len(args))
		args = append(args, cursorCreated)
		createdArg := strconv.Itoa(len(args))
		args = append(args, cursorID)
		idArg := strconv.Itoa(len(args))
		sb.WriteString(` AND (effective_date, created_at, transaction_id) < ($` + dateArg + `, $` + createdArg + `, $` + idArg + `)`)
	}

	args = append(args, limit+1)
	sb.WriteString(` ORDER BY effective_date DESC, created_at DESC, transaction_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`)

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	// One extra row was fetched to detect whether another page exists.
	var nextToken *string
	if len(transactions) > limit {
		transactions = transactions[:limit]
		last := transactions[len(transactions)-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.CreatedAt, last.TransactionID)
		nextToken = &token
	}

	return transactions, nextToken, nil
}

const insertTransactionQuery = `
	INSERT INTO transactions (transaction_id, owner_id, account_id, category_id, subcategory_id, amount, currency_code, original_amount, original_currency, note, effective_date, created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`

func insertTransactionArgs(txn domain.Transaction) []interface{} {
	return []interface{}{
		txn.TransactionID,
		txn.OwnerID,
		txn.AccountID,
		txn.CategoryID,
		nullableString(txn.SubcategoryID),
		txn.Amount,
		txn.CurrencyCode,
		nullableDecimal(txn.OriginalAmount),
		nullableString(txn.OriginalCurrency),
		txn.Note,
		txn.EffectiveDate,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	}
}

// SaveTransaction persists a new transaction. Under the cached balance
// strategy the owning account's balance moves in the same database
// transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if !r.cacheBalances {
		if _, err := r.Pool.Exec(ctx, insertTransactionQuery, insertTransactionArgs(txn)...); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
		}
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, insertTransactionQuery, insertTransactionArgs(txn)...); err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	deltas := map[string]decimal.Decimal{txn.AccountID: txn.Amount}
	if err := r.accountRepo.AdjustCachedBalancesInTx(ctx, tx, deltas); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateTransaction overwrites a transaction's mutable fields. The old row
// is passed alongside so cached balances can be rolled off the old account
// and amount and onto the new ones atomically.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, old, updated domain.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $2, category_id = $3, subcategory_id = $4, amount = $5, currency_code = $6, original_amount = $7, original_currency = $8, note = $9, effective_date = $10, last_updated_at = $11, last_updated_by = $12
		WHERE transaction_id = $1;
	`
	args := []interface{}{
		updated.TransactionID,
		updated.AccountID,
		updated.CategoryID,
		nullableString(updated.SubcategoryID),
		updated.Amount,
		updated.CurrencyCode,
		nullableDecimal(updated.OriginalAmount),
		nullableString(updated.OriginalCurrency),
		updated.Note,
		updated.EffectiveDate,
		updated.LastUpdatedAt,
		updated.LastUpdatedBy,
	}

	if !r.cacheBalances {
		cmdTag, err := r.Pool.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update transaction %s: %w", updated.TransactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	cmdTag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", updated.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	deltas := map[string]decimal.Decimal{}
	deltas[old.AccountID] = deltas[old.AccountID].Sub(old.Amount)
	deltas[updated.AccountID] = deltas[updated.AccountID].Add(updated.Amount)
	if err := r.accountRepo.AdjustCachedBalancesInTx(ctx, tx, deltas); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteTransactions deletes the given transactions where owned by ownerID.
// Ids the owner does not hold are skipped without error; the returned count
// says how many rows actually went away.
func (r *PgxTransactionRepository) DeleteTransactions(ctx context.Context, ownerID string, transactionIDs []string) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if r.cacheBalances {
		// Collect per-account sums before the rows disappear.
		sumQuery := `
			SELECT account_id, COALESCE(SUM(amount), 0)
			FROM transactions
			WHERE owner_id = $1 AND transaction_id = ANY($2)
			GROUP BY account_id;
		`
		rows, err := tx.Query(ctx, sumQuery, ownerID, transactionIDs)
		if err != nil {
			return 0, fmt.Errorf("failed to sum transactions before delete: %w", err)
		}
		deltas := map[string]decimal.Decimal{}
		for rows.Next() {
			var accountID string
			var sum decimal.Decimal
			if err := rows.Scan(&accountID, &sum); err != nil {
				rows.Close()
				return 0, fmt.Errorf("failed to scan transaction sum row: %w", err)
			}
			deltas[accountID] = sum.Neg()
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("error iterating transaction sum rows: %w", err)
		}
		if err := r.accountRepo.AdjustCachedBalancesInTx(ctx, tx, deltas); err != nil {
			return 0, err
		}
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE owner_id = $1 AND transaction_id = ANY($2);`, ownerID, transactionIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// SaveTransferPair atomically posts both legs of a transfer. Both accounts
// are locked first so concurrent transfers touching them serialize, then the
// owner's transfer category is resolved or created inside the same
// transaction and stamped onto both legs before insert.
func (r *PgxTransactionRepository) SaveTransferPair(ctx context.Context, withdrawal, deposit *domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	locked, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{withdrawal.AccountID, deposit.AccountID})
	if err != nil {
		return err
	}
	for _, accountID := range []string{withdrawal.AccountID, deposit.AccountID} {
		if _, ok := locked[accountID]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
	}

	category, err := r.categoryRepo.EnsureTransferCategoryInTx(ctx, tx, withdrawal.OwnerID, withdrawal.CreatedAt)
	if err != nil {
		return err
	}
	withdrawal.CategoryID = category.CategoryID
	deposit.CategoryID = category.CategoryID

	batch := &pgx.Batch{}
	batch.Queue(insertTransactionQuery, insertTransactionArgs(*withdrawal)...)
	batch.Queue(insertTransactionQuery, insertTransactionArgs(*deposit)...)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to insert transfer leg: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close transfer batch: %w", err)
	}

	if r.cacheBalances {
		deltas := map[string]decimal.Decimal{}
		deltas[withdrawal.AccountID] = deltas[withdrawal.AccountID].Add(withdrawal.Amount)
		deltas[deposit.AccountID] = deltas[deposit.AccountID].Add(deposit.Amount)
		if err := r.accountRepo.AdjustCachedBalancesInTx(ctx, tx, deltas); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}
