package services

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/budgetbook/backend/internal/dto"
)

// UserSvcFacade covers the thin identity collaborator: registration,
// credential checks and display preferences.
type UserSvcFacade interface {
	// Register creates a new user with default preferences.
	Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// Authenticate verifies credentials and returns the user.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetPreferences returns the user's display preferences.
	GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error)

	// UpdatePreferences overwrites the user's display preferences.
	UpdatePreferences(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error)
}
