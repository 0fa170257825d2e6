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

type TransferServiceTestSuite struct {
	suite.Suite
	mockAccountRepo     *MockAccountRepository
	mockTransactionRepo *MockTransactionRepository
	service             portssvc.TransferSvcFacade
	ownerID             string
	fromAccount         *domain.Account
	toAccount           *domain.Account
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTransactionRepo = new(MockTransactionRepository)
	suite.service = services.NewTransferService(suite.mockAccountRepo, suite.mockTransactionRepo)
	suite.ownerID = uuid.NewString()
	suite.fromAccount = &domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      suite.ownerID,
		Name:         "Checking",
		CurrencyCode: "EUR",
		IsAvailable:  true,
	}
	suite.toAccount = &domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      suite.ownerID,
		Name:         "Dollar savings",
		CurrencyCode: "USD",
		IsAvailable:  true,
	}
}

func (suite *TransferServiceTestSuite) request() dto.TransferRequest {
	return dto.TransferRequest{
		FromAccountID: suite.fromAccount.AccountID,
		ToAccountID:   suite.toAccount.AccountID,
		FromAmount:    decimal.NewFromInt(100),
		ToAmount:      decimal.NewFromInt(110),
		Note:          "monthly top-up",
		Date:          time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *TransferServiceTestSuite) TestTransfer_PostsBothLegs() {
	ctx := context.Background()
	req := suite.request()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).Return(suite.fromAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.toAccount.AccountID).Return(suite.toAccount, nil).Once()
	suite.mockTransactionRepo.On("SaveTransferPair", ctx,
		mock.AnythingOfType("*domain.Transaction"), mock.AnythingOfType("*domain.Transaction")).
		Return(nil).Once()

	withdrawal, deposit, err := suite.service.Transfer(ctx, suite.ownerID, req)

	suite.Require().NoError(err)
	suite.Equal(suite.fromAccount.AccountID, withdrawal.AccountID)
	suite.Equal(suite.toAccount.AccountID, deposit.AccountID)
	suite.True(withdrawal.Amount.Equal(decimal.NewFromInt(-100)), "withdrawal = %s", withdrawal.Amount)
	suite.True(deposit.Amount.Equal(decimal.NewFromInt(110)), "deposit = %s", deposit.Amount)
	suite.Equal("EUR", withdrawal.CurrencyCode)
	suite.Equal("USD", deposit.CurrencyCode)
	// Both legs read as one movement.
	suite.Equal(withdrawal.CreatedAt, deposit.CreatedAt)
	suite.Equal(withdrawal.EffectiveDate, deposit.EffectiveDate)
	suite.Equal(req.Note, withdrawal.Note)
	suite.Equal(req.Note, deposit.Note)
	suite.mockTransactionRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_SignsAreNormalized() {
	ctx := context.Background()
	req := suite.request()
	// Caller-supplied signs are ignored, only magnitudes count.
	req.FromAmount = decimal.NewFromInt(-100)
	req.ToAmount = decimal.NewFromInt(-110)

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).Return(suite.fromAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.toAccount.AccountID).Return(suite.toAccount, nil).Once()
	suite.mockTransactionRepo.On("SaveTransferPair", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	withdrawal, deposit, err := suite.service.Transfer(ctx, suite.ownerID, req)

	suite.Require().NoError(err)
	suite.True(withdrawal.Amount.IsNegative())
	suite.True(deposit.Amount.IsPositive())
}

func (suite *TransferServiceTestSuite) TestTransfer_SameAccountRejected() {
	ctx := context.Background()
	req := suite.request()
	req.ToAccountID = req.FromAccountID

	_, _, err := suite.service.Transfer(ctx, suite.ownerID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "SaveTransferPair", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_ForeignAccountForbidden() {
	ctx := context.Background()
	req := suite.request()
	suite.toAccount.OwnerID = uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).Return(suite.fromAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.toAccount.AccountID).Return(suite.toAccount, nil).Once()

	_, _, err := suite.service.Transfer(ctx, suite.ownerID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "SaveTransferPair", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_UnavailableAccountRejected() {
	ctx := context.Background()
	req := suite.request()
	suite.fromAccount.IsAvailable = false

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).Return(suite.fromAccount, nil).Once()

	_, _, err := suite.service.Transfer(ctx, suite.ownerID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransferServiceTestSuite) TestTransfer_RepositoryFailureSurfaces() {
	ctx := context.Background()
	req := suite.request()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).Return(suite.fromAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.toAccount.AccountID).Return(suite.toAccount, nil).Once()
	// The repository rolls the whole pair back; nothing partial persists.
	suite.mockTransactionRepo.On("SaveTransferPair", ctx, mock.Anything, mock.Anything).
		Return(apperrors.ErrNotFound).Once()

	_, _, err := suite.service.Transfer(ctx, suite.ownerID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
