package pgsql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
	"github.com/budgetbook/backend/internal/utils/pagination"
)

var accountRowColumns = []string{"account_id", "owner_id", "name", "color", "currency_code", "initial_balance", "is_available", "sort_order", "created_at", "created_by", "last_updated_at", "last_updated_by"}

var categoryRowColumns = []string{"category_id", "scope", "owner_id", "name", "color", "sort_order", "in_charts", "created_at", "created_by", "last_updated_at", "last_updated_by"}

var transactionRowColumns = []string{"transaction_id", "owner_id", "account_id", "category_id", "subcategory_id", "amount", "currency_code", "original_amount", "original_currency", "note", "effective_date", "created_at", "created_by", "last_updated_at", "last_updated_by"}

func accountRows(accounts ...domain.Account) *pgxmock.Rows {
	rows := pgxmock.NewRows(accountRowColumns)
	for _, a := range accounts {
		rows.AddRow(a.AccountID, a.OwnerID, a.Name, a.Color, a.CurrencyCode, a.InitialBalance, a.IsAvailable, a.SortOrder, a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy)
	}
	return rows
}

func categoryRows(categories ...domain.Category) *pgxmock.Rows {
	rows := pgxmock.NewRows(categoryRowColumns)
	for _, c := range categories {
		rows.AddRow(c.CategoryID, c.Scope, nullableOwner(c.OwnerID), c.Name, c.Color, c.SortOrder, c.InCharts, c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy)
	}
	return rows
}

func transactionRows(transactions ...domain.Transaction) *pgxmock.Rows {
	rows := pgxmock.NewRows(transactionRowColumns)
	for _, t := range transactions {
		rows.AddRow(t.TransactionID, t.OwnerID, t.AccountID, t.CategoryID, nullableString(t.SubcategoryID), t.Amount, t.CurrencyCode, nullableDecimal(t.OriginalAmount), nullableString(t.OriginalCurrency), t.Note, t.EffectiveDate, t.CreatedAt, t.CreatedBy, t.LastUpdatedAt, t.LastUpdatedBy)
	}
	return rows
}

type TransactionRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	mock pgxmock.PgxPoolIface
	now  time.Time
}

func (s *TransactionRepositoryTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.mock = mock
	s.now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *TransactionRepositoryTestSuite) TearDownTest() {
	s.mock.Close()
}

func (s *TransactionRepositoryTestSuite) newRepo(cacheBalances bool) *PgxTransactionRepository {
	accountRepo := newPgxAccountRepository(s.mock, cacheBalances)
	categoryRepo := newPgxCategoryRepository(s.mock)
	return newPgxTransactionRepository(s.mock, accountRepo, categoryRepo, cacheBalances)
}

func (s *TransactionRepositoryTestSuite) account(id string) domain.Account {
	return domain.Account{
		AccountID:      id,
		OwnerID:        "user-1",
		Name:           "Account " + id,
		CurrencyCode:   "EUR",
		InitialBalance: decimal.Zero,
		IsAvailable:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now,
			CreatedBy:     "user-1",
			LastUpdatedAt: s.now,
			LastUpdatedBy: "user-1",
		},
	}
}

func (s *TransactionRepositoryTestSuite) transferCategory() domain.Category {
	return domain.Category{
		CategoryID: "cat-transfer",
		Scope:      domain.ScopeUser,
		OwnerID:    "user-1",
		Name:       domain.TransferCategoryName,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now,
			CreatedBy:     "user-1",
			LastUpdatedAt: s.now,
			LastUpdatedBy: "user-1",
		},
	}
}

func (s *TransactionRepositoryTestSuite) transferPair() (*domain.Transaction, *domain.Transaction) {
	audit := domain.AuditFields{CreatedAt: s.now, CreatedBy: "user-1", LastUpdatedAt: s.now, LastUpdatedBy: "user-1"}
	withdrawal := &domain.Transaction{
		TransactionID: "txn-out",
		OwnerID:       "user-1",
		AccountID:     "acc-from",
		Amount:        decimal.NewFromInt(-100),
		CurrencyCode:  "EUR",
		Note:          "Transfer",
		EffectiveDate: s.now,
		AuditFields:   audit,
	}
	deposit := &domain.Transaction{
		TransactionID: "txn-in",
		OwnerID:       "user-1",
		AccountID:     "acc-to",
		Amount:        decimal.NewFromInt(110),
		CurrencyCode:  "USD",
		Note:          "Transfer",
		EffectiveDate: s.now,
		AuditFields:   audit,
	}
	return withdrawal, deposit
}

func (s *TransactionRepositoryTestSuite) expectAccountLock(accounts ...domain.Account) {
	s.mock.ExpectQuery(`FROM accounts WHERE account_id = ANY\(\$1\) FOR UPDATE`).
		WithArgs([]string{"acc-from", "acc-to"}).
		WillReturnRows(accountRows(accounts...))
}

func (s *TransactionRepositoryTestSuite) TestSaveTransferPair_PostsBothLegsAtomically() {
	repo := s.newRepo(false)
	withdrawal, deposit := s.transferPair()

	s.mock.ExpectBegin()
	s.expectAccountLock(s.account("acc-from"), s.account("acc-to"))
	s.mock.ExpectQuery(`FROM categories WHERE owner_id = \$1 AND name = \$2 FOR UPDATE`).
		WithArgs("user-1", domain.TransferCategoryName).
		WillReturnRows(categoryRows(s.transferCategory()))
	batch := s.mock.ExpectBatch()
	batch.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	err := repo.SaveTransferPair(s.ctx, withdrawal, deposit)

	s.NoError(err)
	s.Equal("cat-transfer", withdrawal.CategoryID)
	s.Equal("cat-transfer", deposit.CategoryID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *TransactionRepositoryTestSuite) TestSaveTransferPair_SecondLegFailureRollsBackBoth() {
	repo := s.newRepo(false)
	withdrawal, deposit := s.transferPair()

	s.mock.ExpectBegin()
	s.expectAccountLock(s.account("acc-from"), s.account("acc-to"))
	s.mock.ExpectQuery(`FROM categories WHERE owner_id = \$1 AND name = \$2 FOR UPDATE`).
		WithArgs("user-1", domain.TransferCategoryName).
		WillReturnRows(categoryRows(s.transferCategory()))
	batch := s.mock.ExpectBatch()
	batch.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec(`INSERT INTO transactions`).WillReturnError(errors.New("deposit insert failed"))
	s.mock.ExpectRollback()

	err := repo.SaveTransferPair(s.ctx, withdrawal, deposit)

	s.ErrorContains(err, "failed to insert transfer leg")
	s.NoError(s.mock.ExpectationsWereMet(), "The transaction must roll back, never commit")
}

// A first transfer can race another first transfer for the same owner; the
// loser's insert lands on the unique index and it must pick up the winner's
// category row instead of failing.
func (s *TransactionRepositoryTestSuite) TestSaveTransferPair_ReloadsTransferCategoryLostToConcurrentInsert() {
	repo := s.newRepo(false)
	withdrawal, deposit := s.transferPair()
	winner := s.transferCategory()
	winner.CategoryID = "cat-winner"

	s.mock.ExpectBegin()
	s.expectAccountLock(s.account("acc-from"), s.account("acc-to"))
	s.mock.ExpectQuery(`FROM categories WHERE owner_id = \$1 AND name = \$2 FOR UPDATE`).
		WithArgs("user-1", domain.TransferCategoryName).
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectExec(`INSERT INTO categories`).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	s.mock.ExpectQuery(`FROM categories WHERE owner_id = \$1 AND name = \$2 FOR UPDATE`).
		WithArgs("user-1", domain.TransferCategoryName).
		WillReturnRows(categoryRows(winner))
	batch := s.mock.ExpectBatch()
	batch.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	err := repo.SaveTransferPair(s.ctx, withdrawal, deposit)

	s.NoError(err)
	s.Equal("cat-winner", withdrawal.CategoryID)
	s.Equal("cat-winner", deposit.CategoryID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *TransactionRepositoryTestSuite) TestSaveTransferPair_MissingAccountAbortsBeforeInsert() {
	repo := s.newRepo(false)
	withdrawal, deposit := s.transferPair()

	s.mock.ExpectBegin()
	s.expectAccountLock(s.account("acc-from")) // deposit account row is gone
	s.mock.ExpectRollback()

	err := repo.SaveTransferPair(s.ctx, withdrawal, deposit)

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.NoError(s.mock.ExpectationsWereMet(), "Nothing may be inserted once a locked account is missing")
}

func (s *TransactionRepositoryTestSuite) TestSaveTransferPair_AdjustsCachedBalancesInSameTransaction() {
	repo := s.newRepo(true)
	withdrawal, deposit := s.transferPair()

	s.mock.ExpectBegin()
	s.expectAccountLock(s.account("acc-from"), s.account("acc-to"))
	s.mock.ExpectQuery(`FROM categories WHERE owner_id = \$1 AND name = \$2 FOR UPDATE`).
		WithArgs("user-1", domain.TransferCategoryName).
		WillReturnRows(categoryRows(s.transferCategory()))
	inserts := s.mock.ExpectBatch()
	inserts.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	inserts.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	adjustments := s.mock.ExpectBatch()
	adjustments.ExpectExec(`UPDATE accounts SET cached_balance = cached_balance \+ \$2`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	adjustments.ExpectExec(`UPDATE accounts SET cached_balance = cached_balance \+ \$2`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	err := repo.SaveTransferPair(s.ctx, withdrawal, deposit)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *TransactionRepositoryTestSuite) TestDeleteTransactions_AdjustsCachedBalancesInSameTransaction() {
	repo := s.newRepo(true)
	ids := []string{"txn-1", "txn-2"}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT account_id, COALESCE\(SUM\(amount\), 0\) FROM transactions`).
		WithArgs("user-1", ids).
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "coalesce"}).AddRow("acc-1", decimal.NewFromInt(70)))
	adjustments := s.mock.ExpectBatch()
	adjustments.ExpectExec(`UPDATE accounts SET cached_balance = cached_balance \+ \$2`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec(`DELETE FROM transactions WHERE owner_id = \$1 AND transaction_id = ANY\(\$2\)`).
		WithArgs("user-1", ids).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	s.mock.ExpectCommit()

	count, err := repo.DeleteTransactions(s.ctx, "user-1", ids)

	s.NoError(err)
	s.Equal(int64(2), count)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *TransactionRepositoryTestSuite) TestDeleteTransactions_DeleteFailureRollsBackAdjustment() {
	repo := s.newRepo(true)
	ids := []string{"txn-1"}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT account_id, COALESCE\(SUM\(amount\), 0\) FROM transactions`).
		WithArgs("user-1", ids).
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "coalesce"}).AddRow("acc-1", decimal.NewFromInt(-30)))
	adjustments := s.mock.ExpectBatch()
	adjustments.ExpectExec(`UPDATE accounts SET cached_balance = cached_balance \+ \$2`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec(`DELETE FROM transactions WHERE owner_id = \$1 AND transaction_id = ANY\(\$2\)`).
		WithArgs("user-1", ids).
		WillReturnError(errors.New("delete failed"))
	s.mock.ExpectRollback()

	_, err := repo.DeleteTransactions(s.ctx, "user-1", ids)

	s.ErrorContains(err, "failed to delete transactions")
	s.NoError(s.mock.ExpectationsWereMet(), "The balance adjustment must not survive a failed delete")
}

// Two rows sharing effective_date and created_at must still paginate without
// skips, so the cursor carries the transaction id as a tie breaker.
func (s *TransactionRepositoryTestSuite) TestListTransactions_CursorCarriesTransactionIDTieBreaker() {
	repo := s.newRepo(false)
	effective := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	page := make([]domain.Transaction, 3)
	for i, id := range []string{"txn-c", "txn-b", "txn-a"} {
		page[i] = domain.Transaction{
			TransactionID: id,
			OwnerID:       "user-1",
			AccountID:     "acc-1",
			CategoryID:    "cat-1",
			Amount:        decimal.NewFromInt(-10),
			CurrencyCode:  "EUR",
			EffectiveDate: effective,
			AuditFields:   domain.AuditFields{CreatedAt: created, CreatedBy: "user-1", LastUpdatedAt: created, LastUpdatedBy: "user-1"},
		}
	}

	token := pagination.EncodeToken(effective, created, "txn-d")
	s.mock.ExpectQuery(`AND \(effective_date, created_at, transaction_id\) < \(\$2, \$3, \$4\) ORDER BY effective_date DESC, created_at DESC, transaction_id DESC`).
		WithArgs("user-1", effective, created, "txn-d", 3).
		WillReturnRows(transactionRows(page...))

	got, nextToken, err := repo.ListTransactions(s.ctx, "user-1", portsrepo.TransactionFilter{Limit: 2, NextToken: &token})

	s.NoError(err)
	s.Len(got, 2)
	s.Require().NotNil(nextToken)
	nextDate, nextCreated, nextID, err := pagination.DecodeToken(*nextToken)
	s.NoError(err)
	s.True(nextDate.Equal(effective))
	s.True(nextCreated.Equal(created))
	s.Equal("txn-b", nextID, "The cursor must point at the last row actually returned")
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *TransactionRepositoryTestSuite) TestListTransactions_RejectsMalformedCursor() {
	repo := s.newRepo(false)
	token := "garbage"

	_, _, err := repo.ListTransactions(s.ctx, "user-1", portsrepo.TransactionFilter{Limit: 10, NextToken: &token})

	s.ErrorIs(err, apperrors.ErrValidation)
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestTransactionRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionRepositoryTestSuite))
}
