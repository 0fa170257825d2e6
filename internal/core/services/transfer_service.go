package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/dto"
	"github.com/budgetbook/backend/internal/middleware"
)

// transferService composes two ledger writes into one logical move between
// the owner's accounts. The repository posts both legs and the lazy
// category creation under a single database transaction; a partial transfer
// can never persist.
type transferService struct {
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
}

// NewTransferService creates a new transfer orchestrator.
func NewTransferService(accountRepo portsrepo.AccountRepositoryFacade, transactionRepo portsrepo.TransactionRepositoryFacade) portssvc.TransferSvcFacade {
	return &transferService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// Transfer validates both accounts, then posts a withdrawal of |FromAmount|
// and a deposit of |ToAmount| with one shared timestamp. The two amounts are
// taken as given in each account's native currency; no rate lookup happens
// here, the caller supplies the converted target amount.
func (s *transferService) Transfer(ctx context.Context, ownerID string, req dto.TransferRequest) (*domain.Transaction, *domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.FromAccountID == req.ToAccountID {
		return nil, nil, fmt.Errorf("%w: cannot transfer to the same account", apperrors.ErrValidation)
	}
	if req.FromAmount.IsZero() || req.ToAmount.IsZero() {
		return nil, nil, fmt.Errorf("%w: transfer amounts must not be zero", apperrors.ErrValidation)
	}

	from, err := s.ownedAccount(ctx, ownerID, req.FromAccountID)
	if err != nil {
		return nil, nil, err
	}
	to, err := s.ownedAccount(ctx, ownerID, req.ToAccountID)
	if err != nil {
		return nil, nil, err
	}

	// Both legs share the timestamp so they read as one movement.
	now := time.Now().UTC()
	effective := req.Date.UTC()

	withdrawal := domain.Transaction{
		TransactionID: uuid.NewString(),
		OwnerID:       ownerID,
		AccountID:     from.AccountID,
		Amount:        req.FromAmount.Abs().Neg(),
		CurrencyCode:  from.CurrencyCode,
		Note:          req.Note,
		EffectiveDate: effective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
	deposit := domain.Transaction{
		TransactionID: uuid.NewString(),
		OwnerID:       ownerID,
		AccountID:     to.AccountID,
		Amount:        req.ToAmount.Abs(),
		CurrencyCode:  to.CurrencyCode,
		Note:          req.Note,
		EffectiveDate: effective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}

	// CategoryID is assigned inside the repository transaction, where the
	// owner's transfer category is found or created atomically with the two
	// inserts.
	if err := s.transactionRepo.SaveTransferPair(ctx, &withdrawal, &deposit); err != nil {
		logger.Error("Failed to save transfer pair", "from", from.AccountID, "to", to.AccountID, "error", err.Error())
		return nil, nil, fmt.Errorf("failed to save transfer: %w", err)
	}

	logger.Info("Transfer posted",
		"from_account", from.AccountID,
		"to_account", to.AccountID,
		"withdrawal_id", withdrawal.TransactionID,
		"deposit_id", deposit.TransactionID,
	)
	return &withdrawal, &deposit, nil
}

func (s *transferService) ownedAccount(ctx context.Context, ownerID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	if !account.IsAvailable {
		return nil, fmt.Errorf("%w: account %s is unavailable", apperrors.ErrValidation, accountID)
	}
	return account, nil
}
