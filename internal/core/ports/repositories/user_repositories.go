package repositories

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
)

// UserReader defines read operations for users and their preferences.
type UserReader interface {
	// FindUserByID retrieves a user by id.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetPreferences retrieves the user's display preferences.
	GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error)
}

// UserWriter defines write operations for users and their preferences.
type UserWriter interface {
	// SaveUser persists a new user with default preferences. Returns
	// apperrors.ErrDuplicate when the email is taken.
	SaveUser(ctx context.Context, user domain.User, prefs domain.Preferences) error

	// SavePreferences overwrites the user's display preferences.
	SavePreferences(ctx context.Context, prefs domain.Preferences) error
}

// UserRepositoryFacade combines all user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
