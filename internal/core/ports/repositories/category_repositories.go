package repositories

import (
	"context"
	"time"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// CategoryReader defines read operations for the taxonomy.
type CategoryReader interface {
	// FindCategoryByID retrieves a category by its unique identifier.
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// FindCategoryByName retrieves the owner's category with the given name,
	// including global categories. Returns apperrors.ErrNotFound when absent.
	FindCategoryByName(ctx context.Context, ownerID, name string) (*domain.Category, error)

	// ListCategoriesForUser retrieves global categories plus the user's own,
	// ordered by sort order then name.
	ListCategoriesForUser(ctx context.Context, userID string) ([]domain.Category, error)

	// ListSubcategories retrieves the subcategories for a set of categories,
	// keyed by category id.
	ListSubcategories(ctx context.Context, categoryIDs []string) (map[string][]domain.Subcategory, error)

	// FindSubcategoryByID retrieves a subcategory by its unique identifier.
	FindSubcategoryByID(ctx context.Context, subcategoryID string) (*domain.Subcategory, error)

	// CountCategoryReferences returns how many transactions and plan rows
	// reference the category, directly or through one of its subcategories.
	CountCategoryReferences(ctx context.Context, categoryID string) (transactions, plans int64, err error)

	// CountSubcategoryReferences returns how many transactions and plan rows
	// reference the subcategory.
	CountSubcategoryReferences(ctx context.Context, subcategoryID string) (transactions, plans int64, err error)
}

// CategoryWriter defines write operations for the taxonomy.
type CategoryWriter interface {
	// SaveCategory persists a new category. Returns apperrors.ErrDuplicate
	// when the owner already has a category of the same name.
	SaveCategory(ctx context.Context, category domain.Category) error

	// UpdateCategory updates a category's mutable fields, rename included.
	// Transactions reference categories by id, so a rename is a single-row
	// update with no propagation step.
	UpdateCategory(ctx context.Context, category domain.Category) error

	// DeleteCategoryCascade deletes a category and its subcategories in one
	// database transaction. The caller guarantees nothing references them.
	DeleteCategoryCascade(ctx context.Context, categoryID string) error

	// SaveSubcategory persists a new subcategory.
	SaveSubcategory(ctx context.Context, subcategory domain.Subcategory) error

	// UpdateSubcategory updates a subcategory's mutable fields.
	UpdateSubcategory(ctx context.Context, subcategory domain.Subcategory) error

	// DeleteSubcategory deletes a subcategory. The caller guarantees nothing
	// references it.
	DeleteSubcategory(ctx context.Context, subcategoryID string) error
}

// CategoryTransactionSupport defines taxonomy operations that run inside a
// caller-owned database transaction.
type CategoryTransactionSupport interface {
	// EnsureTransferCategoryInTx finds the owner's transfer category or
	// creates it within the given transaction, so the transfer orchestration
	// stays atomic end to end.
	EnsureTransferCategoryInTx(ctx context.Context, tx pgx.Tx, ownerID string, now time.Time) (*domain.Category, error)
}

// CategoryRepositoryFacade combines all taxonomy repository interfaces.
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
	CategoryTransactionSupport
}
