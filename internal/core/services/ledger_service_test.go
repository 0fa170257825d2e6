package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/core/services"
	"github.com/budgetbook/backend/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccountRepo     *MockAccountRepository
	mockTransactionRepo *MockTransactionRepository
	mockCategoryRepo    *MockCategoryRepository
	mockUserRepo        *MockUserRepository
	mockRates           *MockRatesService
	service             portssvc.LedgerSvcFacade
	ownerID             string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTransactionRepo = new(MockTransactionRepository)
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockRates = new(MockRatesService)
	suite.service = services.NewLedgerService(
		suite.mockAccountRepo,
		suite.mockTransactionRepo,
		suite.mockCategoryRepo,
		suite.mockUserRepo,
		suite.mockRates,
	)
	suite.ownerID = uuid.NewString()
}

func (suite *LedgerServiceTestSuite) ownedAccount(currency string) *domain.Account {
	return &domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      suite.ownerID,
		Name:         "Checking",
		CurrencyCode: currency,
		IsAvailable:  true,
	}
}

func (suite *LedgerServiceTestSuite) visibleCategory() *domain.Category {
	return &domain.Category{
		CategoryID: uuid.NewString(),
		Scope:      domain.ScopeUser,
		OwnerID:    suite.ownerID,
		Name:       "Groceries",
	}
}

// --- Accounts ---

func (suite *LedgerServiceTestSuite) TestListAccounts_ConvertsToDisplayCurrency() {
	ctx := context.Background()
	balances := []domain.AccountBalance{
		{
			Account: domain.Account{AccountID: "usd-acct", CurrencyCode: "USD"},
			Balance: decimal.NewFromInt(110),
		},
		{
			// No rate for CZK in the snapshot: stays native.
			Account: domain.Account{AccountID: "czk-acct", CurrencyCode: "CZK"},
			Balance: decimal.NewFromInt(500),
		},
	}
	snap := domain.RateSnapshot{
		Base:      "EUR",
		Rates:     map[string]decimal.Decimal{"USD": decimal.NewFromFloat(1.10)},
		FetchedAt: time.Now(),
	}

	suite.mockAccountRepo.On("ListAccountsWithBalances", ctx, suite.ownerID).Return(balances, nil).Once()
	suite.mockUserRepo.On("GetPreferences", ctx, suite.ownerID).
		Return(&domain.Preferences{UserID: suite.ownerID, MainCurrency: "EUR"}, nil).Once()
	suite.mockRates.On("DisplaySnapshot", ctx).Return(snap, nil).Once()

	got, err := suite.service.ListAccounts(ctx, suite.ownerID)

	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.True(got[0].DisplayBalance.Equal(decimal.NewFromInt(100)), "display = %s", got[0].DisplayBalance)
	suite.Equal("EUR", got[0].DisplayCurrency)
	suite.False(got[0].RatesStale)
	suite.True(got[1].DisplayBalance.Equal(decimal.NewFromInt(500)))
	suite.Equal("CZK", got[1].DisplayCurrency)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListAccounts_NoSnapshotFallsBackToNative() {
	ctx := context.Background()
	balances := []domain.AccountBalance{
		{
			Account: domain.Account{AccountID: "usd-acct", CurrencyCode: "USD"},
			Balance: decimal.NewFromInt(120),
		},
	}

	suite.mockAccountRepo.On("ListAccountsWithBalances", ctx, suite.ownerID).Return(balances, nil).Once()
	suite.mockUserRepo.On("GetPreferences", ctx, suite.ownerID).
		Return(&domain.Preferences{UserID: suite.ownerID, MainCurrency: "EUR"}, nil).Once()
	suite.mockRates.On("DisplaySnapshot", ctx).
		Return(domain.RateSnapshot{}, apperrors.ErrRatesUnavailable).Once()

	got, err := suite.service.ListAccounts(ctx, suite.ownerID)

	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.True(got[0].DisplayBalance.Equal(decimal.NewFromInt(120)))
	suite.Equal("USD", got[0].DisplayCurrency)
	suite.True(got[0].RatesStale)
}

func (suite *LedgerServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Name:           "Savings",
		Color:          "#00FF00",
		CurrencyCode:   "EUR",
		InitialBalance: decimal.NewFromInt(1000),
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.ownerID, req)

	suite.Require().NoError(err)
	suite.NotEmpty(account.AccountID)
	suite.Equal(suite.ownerID, account.OwnerID)
	suite.Equal(req.Name, account.Name)
	suite.True(account.IsAvailable)
	suite.Equal(suite.ownerID, account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateAccount_ForeignAccountForbidden() {
	ctx := context.Background()
	foreign := suite.ownedAccount("EUR")
	foreign.OwnerID = uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, foreign.AccountID).Return(foreign, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, suite.ownerID, foreign.AccountID, dto.UpdateAccountRequest{Name: stringPtr("Hacked")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteAccount_InUse() {
	ctx := context.Background()
	account := suite.ownedAccount("EUR")

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("DeleteAccount", ctx, account.AccountID).
		Return(apperrors.ErrInUse).Once()

	err := suite.service.DeleteAccount(ctx, suite.ownerID, account.AccountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInUse)
}

// --- Transactions ---

func (suite *LedgerServiceTestSuite) TestPostTransaction_NormalizesCurrency() {
	ctx := context.Background()
	account := suite.ownedAccount("EUR")
	category := suite.visibleCategory()
	req := dto.CreateTransactionRequest{
		AccountID:     account.AccountID,
		CategoryID:    category.CategoryID,
		Amount:        decimal.NewFromInt(-110),
		CurrencyCode:  "USD",
		Note:          "imported",
		EffectiveDate: time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC),
	}
	normalized := domain.NormalizedAmount{
		Amount:           decimal.NewFromInt(-100),
		Currency:         "EUR",
		OriginalAmount:   decimalPtr(decimal.NewFromInt(-110)),
		OriginalCurrency: stringPtr("USD"),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()
	suite.mockRates.On("Normalize", ctx, req.Amount, "USD").Return(normalized, nil).Once()

	var saved domain.Transaction
	suite.mockTransactionRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Transaction) }).
		Return(nil).Once()

	txn, err := suite.service.PostTransaction(ctx, suite.ownerID, req)

	suite.Require().NoError(err)
	suite.True(txn.Amount.Equal(decimal.NewFromInt(-100)))
	suite.Equal("EUR", txn.CurrencyCode)
	suite.Require().True(txn.Converted())
	suite.True(txn.OriginalAmount.Equal(decimal.NewFromInt(-110)))
	suite.Equal("USD", *txn.OriginalCurrency)
	suite.Equal(txn.TransactionID, saved.TransactionID)
	suite.mockRates.AssertExpectations(suite.T())
	suite.mockTransactionRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_ZeroAmountRejected() {
	ctx := context.Background()

	_, err := suite.service.PostTransaction(ctx, suite.ownerID, dto.CreateTransactionRequest{
		AccountID:  "acct",
		CategoryID: "cat",
		Amount:     decimal.Zero,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_SubcategoryOfOtherCategoryRejected() {
	ctx := context.Background()
	account := suite.ownedAccount("EUR")
	category := suite.visibleCategory()
	subcategory := &domain.Subcategory{
		SubcategoryID: uuid.NewString(),
		CategoryID:    uuid.NewString(), // Belongs to a different category
	}
	req := dto.CreateTransactionRequest{
		AccountID:     account.AccountID,
		CategoryID:    category.CategoryID,
		SubcategoryID: &subcategory.SubcategoryID,
		Amount:        decimal.NewFromInt(-10),
		CurrencyCode:  "EUR",
		EffectiveDate: time.Now(),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()
	suite.mockCategoryRepo.On("FindSubcategoryByID", ctx, subcategory.SubcategoryID).Return(subcategory, nil).Once()

	_, err := suite.service.PostTransaction(ctx, suite.ownerID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_RatesDownRejected() {
	ctx := context.Background()
	account := suite.ownedAccount("EUR")
	category := suite.visibleCategory()
	req := dto.CreateTransactionRequest{
		AccountID:     account.AccountID,
		CategoryID:    category.CategoryID,
		Amount:        decimal.NewFromInt(-110),
		CurrencyCode:  "USD",
		EffectiveDate: time.Now(),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()
	suite.mockRates.On("Normalize", ctx, req.Amount, "USD").
		Return(domain.NormalizedAmount{}, apperrors.ErrRatesUnavailable).Once()

	_, err := suite.service.PostTransaction(ctx, suite.ownerID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRatesUnavailable)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestUpdateTransaction_ForeignOwnerForbidden() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: uuid.NewString(),
		OwnerID:       uuid.NewString(),
	}

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, existing.TransactionID).Return(existing, nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, suite.ownerID, existing.TransactionID, dto.UpdateTransactionRequest{
		AccountID:  "acct",
		CategoryID: "cat",
		Amount:     decimal.NewFromInt(5),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_MissIsSilentNoOp() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockTransactionRepo.On("DeleteTransactions", ctx, suite.ownerID, []string{transactionID}).
		Return(int64(0), nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.ownerID, transactionID)

	suite.Require().NoError(err)
	suite.mockTransactionRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestBulkDeleteTransactions_ReportsCount() {
	ctx := context.Background()
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}

	// One of the three ids belongs to someone else and is skipped.
	suite.mockTransactionRepo.On("DeleteTransactions", ctx, suite.ownerID, ids).
		Return(int64(2), nil).Once()

	deleted, err := suite.service.BulkDeleteTransactions(ctx, suite.ownerID, ids)

	suite.Require().NoError(err)
	suite.Equal(int64(2), deleted)
}

func (suite *LedgerServiceTestSuite) TestBulkDeleteTransactions_EmptyRejected() {
	ctx := context.Background()

	_, err := suite.service.BulkDeleteTransactions(ctx, suite.ownerID, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestListTransactions_InvalidMonthRejected() {
	ctx := context.Background()

	_, err := suite.service.ListTransactions(ctx, suite.ownerID, dto.ListTransactionsParams{Month: "January"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListTransactions_PassesCursorThrough() {
	ctx := context.Background()
	next := "opaque-token"
	txns := []domain.Transaction{{TransactionID: uuid.NewString(), OwnerID: suite.ownerID}}

	suite.mockTransactionRepo.On("ListTransactions", ctx, suite.ownerID, mock.Anything).
		Return(txns, &next, nil).Once()

	resp, err := suite.service.ListTransactions(ctx, suite.ownerID, dto.ListTransactionsParams{Limit: 1})

	suite.Require().NoError(err)
	suite.Len(resp.Transactions, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
