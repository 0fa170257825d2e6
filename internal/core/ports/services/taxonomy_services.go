package services

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/budgetbook/backend/internal/dto"
)

// TaxonomySvcFacade owns the category and subcategory taxonomy and its
// referential safety rules.
type TaxonomySvcFacade interface {
	// ListCategories returns global categories plus the user's own, each
	// with its subcategories.
	ListCategories(ctx context.Context, userID string) ([]dto.CategoryResponse, error)

	// CreateCategory creates a user-scoped category, failing with
	// apperrors.ErrDuplicate when the name is already taken in the user's
	// view (own or global).
	CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error)

	// UpdateCategory renames or restyles an owned category. Global
	// categories are immutable through the API.
	UpdateCategory(ctx context.Context, userID, categoryID string, req dto.UpdateCategoryRequest) (*domain.Category, error)

	// DeleteCategory deletes an owned, unreferenced category and cascades to
	// its subcategories; fails with apperrors.ErrInUse when transactions or
	// plans still reference it.
	DeleteCategory(ctx context.Context, userID, categoryID string) error

	// CreateSubcategory creates a subcategory under an owned category.
	CreateSubcategory(ctx context.Context, userID, categoryID string, req dto.CreateSubcategoryRequest) (*domain.Subcategory, error)

	// UpdateSubcategory renames a subcategory, ownership checked through the
	// parent category.
	UpdateSubcategory(ctx context.Context, userID, subcategoryID string, req dto.UpdateSubcategoryRequest) (*domain.Subcategory, error)

	// DeleteSubcategory deletes an unreferenced subcategory.
	DeleteSubcategory(ctx context.Context, userID, subcategoryID string) error
}
