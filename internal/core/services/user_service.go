package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/dto"
	"github.com/budgetbook/backend/internal/middleware"
	"github.com/budgetbook/backend/internal/utils"
)

type userService struct {
	userRepo     portsrepo.UserRepositoryFacade
	baseCurrency string
}

// NewUserService creates a new user service. baseCurrency seeds the default
// preferences of freshly registered users.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, baseCurrency string) portssvc.UserSvcFacade {
	return &userService{
		userRepo:     userRepo,
		baseCurrency: baseCurrency,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// Register creates a new user with default display preferences.
func (s *userService) Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err.Error())
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "self-registration",
			LastUpdatedAt: now,
			LastUpdatedBy: "self-registration",
		},
	}
	prefs := domain.Preferences{
		UserID:            user.UserID,
		MainCurrency:      s.baseCurrency,
		EnabledCurrencies: []string{s.baseCurrency},
	}

	if err := s.userRepo.SaveUser(ctx, user, prefs); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save user", "error", err.Error())
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User registered", "user_id", user.UserID)
	return &user, nil
}

// Authenticate verifies credentials and returns the matching user. Both an
// unknown email and a wrong password surface as ErrForbidden so callers
// cannot probe which emails exist.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	return user, nil
}

// GetPreferences returns the user's display preferences.
func (s *userService) GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	return s.userRepo.GetPreferences(ctx, userID)
}

// UpdatePreferences overwrites the user's display preferences. The main
// currency must always be one of the enabled currencies.
func (s *userService) UpdatePreferences(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	prefs, err := s.userRepo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.MainCurrency != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.MainCurrency))
		if len(code) != 3 {
			return nil, fmt.Errorf("%w: main currency must be a 3-letter code", apperrors.ErrValidation)
		}
		prefs.MainCurrency = code
	}
	if req.EnabledCurrencies != nil {
		enabled := make([]string, 0, len(req.EnabledCurrencies))
		for _, c := range req.EnabledCurrencies {
			code := strings.ToUpper(strings.TrimSpace(c))
			if len(code) != 3 {
				return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
			}
			enabled = append(enabled, code)
		}
		prefs.EnabledCurrencies = enabled
	}

	found := false
	for _, c := range prefs.EnabledCurrencies {
		if c == prefs.MainCurrency {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: main currency %s is not in the enabled list", apperrors.ErrValidation, prefs.MainCurrency)
	}

	if err := s.userRepo.SavePreferences(ctx, *prefs); err != nil {
		logger.Error("Failed to save preferences", "user_id", userID, "error", err.Error())
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return prefs, nil
}
