package pgsql

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	mock pgxmock.PgxPoolIface
	now  time.Time
}

func (s *AccountRepositoryTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.mock = mock
	s.now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *AccountRepositoryTestSuite) TearDownTest() {
	s.mock.Close()
}

func (s *AccountRepositoryTestSuite) balanceRow(name string, initial, balance decimal.Decimal) *pgxmock.Rows {
	columns := append(append([]string{}, accountRowColumns...), "balance")
	return pgxmock.NewRows(columns).AddRow(
		"acc-1", "user-1", name, "", "EUR", initial, true, 0,
		s.now, "user-1", s.now, "user-1", balance,
	)
}

// The derived strategy computes each balance as initial_balance plus the sum
// of the account's transactions at query time.
func (s *AccountRepositoryTestSuite) TestListAccountsWithBalances_DerivedSumsTransactions() {
	repo := newPgxAccountRepository(s.mock, false)

	s.mock.ExpectQuery(`a\.initial_balance \+ COALESCE\(SUM\(t\.amount\), 0\) AS balance`).
		WithArgs("user-1").
		WillReturnRows(s.balanceRow("Cash", decimal.NewFromInt(100), decimal.NewFromInt(120)))

	balances, err := repo.ListAccountsWithBalances(s.ctx, "user-1")

	s.NoError(err)
	s.Require().Len(balances, 1)
	s.True(balances[0].Balance.Equal(decimal.NewFromInt(120)))
	s.NoError(s.mock.ExpectationsWereMet())
}

// The cached strategy must read the maintained column instead of joining the
// transactions table.
func (s *AccountRepositoryTestSuite) TestListAccountsWithBalances_CachedReadsMaintainedColumn() {
	repo := newPgxAccountRepository(s.mock, true)

	s.mock.ExpectQuery(`a\.initial_balance \+ a\.cached_balance AS balance`).
		WithArgs("user-1").
		WillReturnRows(s.balanceRow("Cash", decimal.NewFromInt(100), decimal.NewFromInt(120)))

	balances, err := repo.ListAccountsWithBalances(s.ctx, "user-1")

	s.NoError(err)
	s.Require().Len(balances, 1)
	s.True(balances[0].Balance.Equal(decimal.NewFromInt(120)))
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AccountRepositoryTestSuite) TestFindAccountsByIDsForUpdate_EmptyInputSkipsQuery() {
	repo := newPgxAccountRepository(s.mock, false)

	accounts, err := repo.FindAccountsByIDsForUpdate(s.ctx, nil, nil)

	s.NoError(err)
	s.Empty(accounts)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AccountRepositoryTestSuite) TestAdjustCachedBalancesInTx_SkipsZeroDeltas() {
	repo := newPgxAccountRepository(s.mock, true)

	s.mock.ExpectBegin()
	tx, err := s.mock.Begin(s.ctx)
	s.Require().NoError(err)

	err = repo.AdjustCachedBalancesInTx(s.ctx, tx, map[string]decimal.Decimal{"acc-1": decimal.Zero})

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet(), "A zero delta must not touch the database")
}

func TestAccountRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AccountRepositoryTestSuite))
}
