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

// taxonomyService owns categories and subcategories. Transactions and plans
// reference the taxonomy by id, so renames never need to touch historical
// rows, and deletion is guarded by reference counts rather than cascades.
type taxonomyService struct {
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewTaxonomyService creates a new taxonomy service.
func NewTaxonomyService(categoryRepo portsrepo.CategoryRepositoryFacade) portssvc.TaxonomySvcFacade {
	return &taxonomyService{categoryRepo: categoryRepo}
}

var _ portssvc.TaxonomySvcFacade = (*taxonomyService)(nil)

// ListCategories returns global categories plus the user's own, each with
// its subcategories.
func (s *taxonomyService) ListCategories(ctx context.Context, userID string) ([]dto.CategoryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	categories, err := s.categoryRepo.ListCategoriesForUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list categories", "error", err.Error())
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.CategoryID
	}
	subsByCategory, err := s.categoryRepo.ListSubcategories(ctx, ids)
	if err != nil {
		logger.Error("Failed to list subcategories", "error", err.Error())
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}

	responses := make([]dto.CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = dto.ToCategoryResponse(c, subsByCategory[c.CategoryID])
	}
	return responses, nil
}

// CreateCategory creates a user-scoped category. The name must be unique in
// the user's view, global categories included, so listings never show two
// identically named categories.
func (s *taxonomyService) CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.categoryRepo.FindCategoryByName(ctx, userID, req.Name); err == nil {
		return nil, fmt.Errorf("%w: category %q", apperrors.ErrDuplicate, req.Name)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check category name", "error", err.Error())
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	inCharts := true
	if req.InCharts != nil {
		inCharts = *req.InCharts
	}

	now := time.Now().UTC()
	category := domain.Category{
		CategoryID: uuid.NewString(),
		Scope:      domain.ScopeUser,
		OwnerID:    userID,
		Name:       req.Name,
		Color:      req.Color,
		SortOrder:  req.SortOrder,
		InCharts:   inCharts,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save category", "error", err.Error())
		}
		return nil, fmt.Errorf("failed to save category: %w", err)
	}

	logger.Info("Category created", "category_id", category.CategoryID)
	return &category, nil
}

// UpdateCategory renames or restyles an owned category. Because
// transactions reference the category by id, the rename is one atomic
// single-row update and every historical transaction reads the new name.
func (s *taxonomyService) UpdateCategory(ctx context.Context, userID, categoryID string, req dto.UpdateCategoryRequest) (*domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	category, err := s.mutableCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != category.Name {
		if _, err := s.categoryRepo.FindCategoryByName(ctx, userID, *req.Name); err == nil {
			return nil, fmt.Errorf("%w: category %q", apperrors.ErrDuplicate, *req.Name)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
		category.Name = *req.Name
		updated = true
	}
	if req.Color != nil {
		category.Color = *req.Color
		updated = true
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
		updated = true
	}
	if req.InCharts != nil {
		category.InCharts = *req.InCharts
		updated = true
	}
	if !updated {
		return category, nil
	}

	category.LastUpdatedAt = time.Now().UTC()
	category.LastUpdatedBy = userID

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		logger.Error("Failed to update category", "category_id", categoryID, "error", err.Error())
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory deletes an owned category and cascades to its
// subcategories, but only when no transaction or plan references any of
// them. In-use categories are rejected with enough detail to act on.
func (s *taxonomyService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.mutableCategory(ctx, userID, categoryID); err != nil {
		return err
	}

	txns, plans, err := s.categoryRepo.CountCategoryReferences(ctx, categoryID)
	if err != nil {
		logger.Error("Failed to count category references", "category_id", categoryID, "error", err.Error())
		return fmt.Errorf("failed to count category references: %w", err)
	}
	if txns > 0 || plans > 0 {
		logger.Warn("Category delete blocked", "category_id", categoryID, "transactions", txns, "plans", plans)
		return fmt.Errorf("%w: category referenced by %d transactions and %d plans", apperrors.ErrInUse, txns, plans)
	}

	if err := s.categoryRepo.DeleteCategoryCascade(ctx, categoryID); err != nil {
		logger.Error("Failed to delete category", "category_id", categoryID, "error", err.Error())
		return fmt.Errorf("failed to delete category: %w", err)
	}

	logger.Info("Category deleted", "category_id", categoryID)
	return nil
}

// CreateSubcategory creates a subcategory under an owned category.
func (s *taxonomyService) CreateSubcategory(ctx context.Context, userID, categoryID string, req dto.CreateSubcategoryRequest) (*domain.Subcategory, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.mutableCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	subcategory := domain.Subcategory{
		SubcategoryID: uuid.NewString(),
		CategoryID:    categoryID,
		Name:          req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveSubcategory(ctx, subcategory); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save subcategory", "error", err.Error())
		}
		return nil, fmt.Errorf("failed to save subcategory: %w", err)
	}

	logger.Info("Subcategory created", "subcategory_id", subcategory.SubcategoryID, "category_id", categoryID)
	return &subcategory, nil
}

// UpdateSubcategory renames a subcategory. Ownership is checked through the
// parent category.
func (s *taxonomyService) UpdateSubcategory(ctx context.Context, userID, subcategoryID string, req dto.UpdateSubcategoryRequest) (*domain.Subcategory, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	subcategory, err := s.ownedSubcategory(ctx, userID, subcategoryID)
	if err != nil {
		return nil, err
	}

	if req.Name == nil || *req.Name == subcategory.Name {
		return subcategory, nil
	}
	subcategory.Name = *req.Name
	subcategory.LastUpdatedAt = time.Now().UTC()
	subcategory.LastUpdatedBy = userID

	if err := s.categoryRepo.UpdateSubcategory(ctx, *subcategory); err != nil {
		logger.Error("Failed to update subcategory", "subcategory_id", subcategoryID, "error", err.Error())
		return nil, fmt.Errorf("failed to update subcategory: %w", err)
	}
	return subcategory, nil
}

// DeleteSubcategory deletes an unreferenced subcategory.
func (s *taxonomyService) DeleteSubcategory(ctx context.Context, userID, subcategoryID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.ownedSubcategory(ctx, userID, subcategoryID); err != nil {
		return err
	}

	txns, plans, err := s.categoryRepo.CountSubcategoryReferences(ctx, subcategoryID)
	if err != nil {
		logger.Error("Failed to count subcategory references", "subcategory_id", subcategoryID, "error", err.Error())
		return fmt.Errorf("failed to count subcategory references: %w", err)
	}
	if txns > 0 || plans > 0 {
		logger.Warn("Subcategory delete blocked", "subcategory_id", subcategoryID, "transactions", txns, "plans", plans)
		return fmt.Errorf("%w: subcategory referenced by %d transactions and %d plans", apperrors.ErrInUse, txns, plans)
	}

	if err := s.categoryRepo.DeleteSubcategory(ctx, subcategoryID); err != nil {
		logger.Error("Failed to delete subcategory", "subcategory_id", subcategoryID, "error", err.Error())
		return fmt.Errorf("failed to delete subcategory: %w", err)
	}

	logger.Info("Subcategory deleted", "subcategory_id", subcategoryID)
	return nil
}

// mutableCategory fetches a category and verifies the user may mutate it.
// Global and foreign categories both surface as not found, so existence is
// not leaked.
func (s *taxonomyService) mutableCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.MutableBy(userID) {
		return nil, apperrors.ErrNotFound
	}
	return category, nil
}

// ownedSubcategory fetches a subcategory and checks ownership through its
// parent category.
func (s *taxonomyService) ownedSubcategory(ctx context.Context, userID, subcategoryID string) (*domain.Subcategory, error) {
	subcategory, err := s.categoryRepo.FindSubcategoryByID(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.mutableCategory(ctx, userID, subcategory.CategoryID); err != nil {
		return nil, err
	}
	return subcategory, nil
}
