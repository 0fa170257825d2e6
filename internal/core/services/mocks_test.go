package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
)

// Shared repository and service mocks for the service test suites.

func stringPtr(s string) *string { return &s }

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// --- MockAccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsWithBalances(ctx context.Context, ownerID string) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustCachedBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, tx, deltas)
	return args.Error(0)
}

// --- MockCategoryRepository ---

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindCategoryByName(ctx context.Context, ownerID, name string) (*domain.Category, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategoriesForUser(ctx context.Context, userID string) ([]domain.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListSubcategories(ctx context.Context, categoryIDs []string) (map[string][]domain.Subcategory, error) {
	args := m.Called(ctx, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.Subcategory), args.Error(1)
}

func (m *MockCategoryRepository) FindSubcategoryByID(ctx context.Context, subcategoryID string) (*domain.Subcategory, error) {
	args := m.Called(ctx, subcategoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subcategory), args.Error(1)
}

func (m *MockCategoryRepository) CountCategoryReferences(ctx context.Context, categoryID string) (int64, int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) CountSubcategoryReferences(ctx context.Context, subcategoryID string) (int64, int64, error) {
	args := m.Called(ctx, subcategoryID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCategoryCascade(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

func (m *MockCategoryRepository) SaveSubcategory(ctx context.Context, subcategory domain.Subcategory) error {
	args := m.Called(ctx, subcategory)
	return args.Error(0)
}

func (m *MockCategoryRepository) UpdateSubcategory(ctx context.Context, subcategory domain.Subcategory) error {
	args := m.Called(ctx, subcategory)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteSubcategory(ctx context.Context, subcategoryID string) error {
	args := m.Called(ctx, subcategoryID)
	return args.Error(0)
}

func (m *MockCategoryRepository) EnsureTransferCategoryInTx(ctx context.Context, tx pgx.Tx, ownerID string, now time.Time) (*domain.Category, error) {
	args := m.Called(ctx, tx, ownerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// --- MockTransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, ownerID string, filter portsrepo.TransactionFilter) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, ownerID, filter)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return txns, next, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, old, updated domain.Transaction) error {
	args := m.Called(ctx, old, updated)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransactions(ctx context.Context, ownerID string, transactionIDs []string) (int64, error) {
	args := m.Called(ctx, ownerID, transactionIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransferPair(ctx context.Context, withdrawal, deposit *domain.Transaction) error {
	args := m.Called(ctx, withdrawal, deposit)
	return args.Error(0)
}

// --- MockPlanRepository ---

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindPlanByID(ctx context.Context, planID string) (*domain.MonthlyPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlyPlan), args.Error(1)
}

func (m *MockPlanRepository) ListPlansWithSpent(ctx context.Context, ownerID string, month domain.Month) ([]domain.PlanWithSpent, error) {
	args := m.Called(ctx, ownerID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlanWithSpent), args.Error(1)
}

func (m *MockPlanRepository) SavePlan(ctx context.Context, plan domain.MonthlyPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) UpdatePlan(ctx context.Context, plan domain.MonthlyPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) DeletePlan(ctx context.Context, ownerID, planID string) (int64, error) {
	args := m.Called(ctx, ownerID, planID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanRepository) CopyPlans(ctx context.Context, ownerID string, from, to domain.Month, now time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, from, to, now)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockUserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Preferences), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User, prefs domain.Preferences) error {
	args := m.Called(ctx, user, prefs)
	return args.Error(0)
}

func (m *MockUserRepository) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

// --- MockRatesService ---

type MockRatesService struct {
	mock.Mock
}

func (m *MockRatesService) Snapshot(ctx context.Context) (domain.RateSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RateSnapshot), args.Error(1)
}

func (m *MockRatesService) DisplaySnapshot(ctx context.Context) (domain.RateSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RateSnapshot), args.Error(1)
}

func (m *MockRatesService) Normalize(ctx context.Context, amount decimal.Decimal, currency string) (domain.NormalizedAmount, error) {
	args := m.Called(ctx, amount, currency)
	return args.Get(0).(domain.NormalizedAmount), args.Error(1)
}

// --- MockRateProvider ---

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}
