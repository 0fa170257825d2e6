package services

import (
	"context"
	"errors"
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

// ledgerService owns accounts and transactions: derived balances, entry-time
// normalization and the deletion guards.
type ledgerService struct {
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	categoryRepo    portsrepo.CategoryRepositoryFacade
	userRepo        portsrepo.UserRepositoryFacade
	rates           portssvc.RatesSvcFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	accountRepo portsrepo.AccountRepositoryFacade,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	categoryRepo portsrepo.CategoryRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	rates portssvc.RatesSvcFacade,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		userRepo:        userRepo,
		rates:           rates,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ListAccounts returns the owner's accounts with derived balances. Each
// balance is summed in the account's native currency first and converted
// once into the display currency, so rate drift never compounds across the
// account's history.
func (s *ledgerService) ListAccounts(ctx context.Context, ownerID string) ([]domain.AccountBalance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	balances, err := s.accountRepo.ListAccountsWithBalances(ctx, ownerID)
	if err != nil {
		logger.Error("Failed to list accounts", "error", err.Error())
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(balances) == 0 {
		return []domain.AccountBalance{}, nil
	}

	prefs, err := s.userRepo.GetPreferences(ctx, ownerID)
	if err != nil {
		logger.Error("Failed to load preferences for display conversion", "error", err.Error())
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	// One snapshot for the whole listing; the read path tolerates staleness.
	snap, err := s.rates.DisplaySnapshot(ctx)
	if err != nil {
		logger.Warn("No rate snapshot available, returning native balances only", "error", err.Error())
		for i := range balances {
			balances[i].DisplayBalance = balances[i].Balance
			balances[i].DisplayCurrency = balances[i].CurrencyCode
			balances[i].RatesStale = true
		}
		return balances, nil
	}

	for i := range balances {
		display, convErr := snap.Convert(balances[i].Balance, balances[i].CurrencyCode, prefs.MainCurrency)
		if convErr != nil {
			// Currencies outside the rate set stay in their native currency.
			balances[i].DisplayBalance = balances[i].Balance
			balances[i].DisplayCurrency = balances[i].CurrencyCode
			continue
		}
		balances[i].DisplayBalance = display
		balances[i].DisplayCurrency = prefs.MainCurrency
		balances[i].RatesStale = snap.Stale
	}
	return balances, nil
}

// CreateAccount creates a new account for the owner.
func (s *ledgerService) CreateAccount(ctx context.Context, ownerID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		OwnerID:        ownerID,
		Name:           req.Name,
		Color:          req.Color,
		CurrencyCode:   req.CurrencyCode,
		InitialBalance: req.InitialBalance,
		IsAvailable:    true,
		SortOrder:      req.SortOrder,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account", "error", err.Error())
		}
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", "account_id", account.AccountID)
	return &account, nil
}

// UpdateAccount updates mutable account fields. The native currency is
// immutable: changing it would reinterpret every amount already posted.
func (s *ledgerService) UpdateAccount(ctx context.Context, ownerID, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.ownedAccount(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Color != nil {
		account.Color = *req.Color
		updated = true
	}
	if req.IsAvailable != nil {
		account.IsAvailable = *req.IsAvailable
		updated = true
	}
	if req.SortOrder != nil {
		account.SortOrder = *req.SortOrder
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = ownerID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", "account_id", accountID, "error", err.Error())
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeleteAccount deletes an unreferenced, owned account. Deletion is
// rejected, not cascaded, while transactions still reference the account.
func (s *ledgerService) DeleteAccount(ctx context.Context, ownerID, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.ownedAccount(ctx, ownerID, accountID); err != nil {
		return err
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrInUse) {
			logger.Warn("Account delete blocked by referencing transactions", "account_id", accountID)
		} else {
			logger.Error("Failed to delete account", "account_id", accountID, "error", err.Error())
		}
		return err
	}

	logger.Info("Account deleted", "account_id", accountID)
	return nil
}

// PostTransaction validates, normalizes and persists a new transaction.
// Normalization happens exactly once, here; callers supply the entered
// amount and currency untouched.
func (s *ledgerService) PostTransaction(ctx context.Context, ownerID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must not be zero", apperrors.ErrValidation)
	}
	if err := s.validateReferences(ctx, ownerID, req.AccountID, req.CategoryID, req.SubcategoryID); err != nil {
		return nil, err
	}

	normalized, err := s.rates.Normalize(ctx, req.Amount, req.CurrencyCode)
	if err != nil {
		logger.Warn("Normalization failed, rejecting write", "error", err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:    uuid.NewString(),
		OwnerID:          ownerID,
		AccountID:        req.AccountID,
		CategoryID:       req.CategoryID,
		SubcategoryID:    req.SubcategoryID,
		Amount:           normalized.Amount,
		CurrencyCode:     normalized.Currency,
		OriginalAmount:   normalized.OriginalAmount,
		OriginalCurrency: normalized.OriginalCurrency,
		Note:             req.Note,
		EffectiveDate:    req.EffectiveDate.UTC(),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}

	if err := s.transactionRepo.SaveTransaction(ctx, txn); err != nil {
		logger.Error("Failed to save transaction", "error", err.Error())
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	logger.Info("Transaction posted", "transaction_id", txn.TransactionID, "account_id", txn.AccountID)
	return &txn, nil
}

// UpdateTransaction overwrites all mutable fields of an owned transaction,
// re-applying the same normalization as creation.
func (s *ledgerService) UpdateTransaction(ctx context.Context, ownerID, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != ownerID {
		logger.Warn("Transaction update forbidden", "transaction_id", transactionID)
		return nil, apperrors.ErrForbidden
	}

	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must not be zero", apperrors.ErrValidation)
	}
	if err := s.validateReferences(ctx, ownerID, req.AccountID, req.CategoryID, req.SubcategoryID); err != nil {
		return nil, err
	}

	normalized, err := s.rates.Normalize(ctx, req.Amount, req.CurrencyCode)
	if err != nil {
		logger.Warn("Normalization failed, rejecting update", "error", err.Error())
		return nil, err
	}

	updated := *existing
	updated.AccountID = req.AccountID
	updated.CategoryID = req.CategoryID
	updated.SubcategoryID = req.SubcategoryID
	updated.Amount = normalized.Amount
	updated.CurrencyCode = normalized.Currency
	updated.OriginalAmount = normalized.OriginalAmount
	updated.OriginalCurrency = normalized.OriginalCurrency
	updated.Note = req.Note
	updated.EffectiveDate = req.EffectiveDate.UTC()
	updated.LastUpdatedAt = time.Now().UTC()
	updated.LastUpdatedBy = ownerID

	if err := s.transactionRepo.UpdateTransaction(ctx, *existing, updated); err != nil {
		logger.Error("Failed to update transaction", "transaction_id", transactionID, "error", err.Error())
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return &updated, nil
}

// DeleteTransaction removes an owned transaction. An unowned or missing id
// is a silent no-op: zero rows affected, no error.
func (s *ledgerService) DeleteTransaction(ctx context.Context, ownerID, transactionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	deleted, err := s.transactionRepo.DeleteTransactions(ctx, ownerID, []string{transactionID})
	if err != nil {
		logger.Error("Failed to delete transaction", "transaction_id", transactionID, "error", err.Error())
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if deleted == 0 {
		logger.Debug("Delete matched no owned transaction", "transaction_id", transactionID)
	}
	return nil
}

// BulkDeleteTransactions removes the owned subset of the given ids.
func (s *ledgerService) BulkDeleteTransactions(ctx context.Context, ownerID string, transactionIDs []string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(transactionIDs) == 0 {
		return 0, fmt.Errorf("%w: no transaction ids given", apperrors.ErrValidation)
	}

	deleted, err := s.transactionRepo.DeleteTransactions(ctx, ownerID, transactionIDs)
	if err != nil {
		logger.Error("Failed to bulk delete transactions", "error", err.Error())
		return 0, fmt.Errorf("failed to bulk delete transactions: %w", err)
	}

	logger.Info("Transactions deleted", "requested", len(transactionIDs), "deleted", deleted)
	return deleted, nil
}

// ListTransactions returns one page of the owner's transactions.
func (s *ledgerService) ListTransactions(ctx context.Context, ownerID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := portsrepo.TransactionFilter{
		AccountID: params.AccountID,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	if params.Month != "" {
		month, err := domain.ParseMonth(params.Month)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter.Month = month
	}

	transactions, nextToken, err := s.transactionRepo.ListTransactions(ctx, ownerID, filter)
	if err != nil {
		logger.Error("Failed to list transactions", "error", err.Error())
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

// ownedAccount fetches an account and verifies ownership. Foreign accounts
// surface as forbidden, which handlers report identically to not-found.
func (s *ledgerService) ownedAccount(ctx context.Context, ownerID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return account, nil
}

// validateReferences checks that the account, category and optional
// subcategory all exist and are usable by the owner, before anything is
// written.
func (s *ledgerService) validateReferences(ctx context.Context, ownerID, accountID, categoryID string, subcategoryID *string) error {
	if _, err := s.ownedAccount(ctx, ownerID, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrForbidden) {
			return fmt.Errorf("%w: account %s", apperrors.ErrValidation, accountID)
		}
		return err
	}

	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: category %s", apperrors.ErrValidation, categoryID)
		}
		return err
	}
	if !category.VisibleTo(ownerID) {
		return fmt.Errorf("%w: category %s", apperrors.ErrValidation, categoryID)
	}

	if subcategoryID != nil {
		subcategory, err := s.categoryRepo.FindSubcategoryByID(ctx, *subcategoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: subcategory %s", apperrors.ErrValidation, *subcategoryID)
			}
			return err
		}
		if subcategory.CategoryID != categoryID {
			return fmt.Errorf("%w: subcategory %s does not belong to category %s", apperrors.ErrValidation, *subcategoryID, categoryID)
		}
	}
	return nil
}
