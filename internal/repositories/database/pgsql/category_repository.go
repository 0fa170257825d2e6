package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
)

type PgxCategoryRepository struct {
	BaseRepository
}

// newPgxCategoryRepository creates a new repository for taxonomy data.
func newPgxCategoryRepository(pool DBPool) *PgxCategoryRepository {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

const categoryColumns = `category_id, scope, owner_id, name, color, sort_order, in_charts, created_at, created_by, last_updated_at, last_updated_by`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var cat domain.Category
	var ownerID sql.NullString
	err := row.Scan(
		&cat.CategoryID,
		&cat.Scope,
		&ownerID,
		&cat.Name,
		&cat.Color,
		&cat.SortOrder,
		&cat.InCharts,
		&cat.CreatedAt,
		&cat.CreatedBy,
		&cat.LastUpdatedAt,
		&cat.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		cat.OwnerID = ownerID.String
	}
	return &cat, nil
}

// nullableOwner maps the domain's empty owner (global scope) to SQL NULL.
func nullableOwner(ownerID string) sql.NullString {
	if ownerID == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: ownerID, Valid: true}
}

// FindCategoryByID retrieves a category by its ID.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1;`

	cat, err := scanCategory(r.Pool.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID %s: %w", categoryID, err)
	}
	return cat, nil
}

// FindCategoryByName retrieves the owner's category with the given name,
// global categories included.
func (r *PgxCategoryRepository) FindCategoryByName(ctx context.Context, ownerID, name string) (*domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE name = $2 AND (owner_id = $1 OR owner_id IS NULL)
		ORDER BY owner_id NULLS LAST
		LIMIT 1;
	`
	cat, err := scanCategory(r.Pool.QueryRow(ctx, query, ownerID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category named %q: %w", name, err)
	}
	return cat, nil
}

// ListCategoriesForUser retrieves global categories plus the user's own.
func (r *PgxCategoryRepository) ListCategoriesForUser(ctx context.Context, userID string) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = $1 OR owner_id IS NULL
		ORDER BY sort_order, name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for user %s: %w", userID, err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

const subcategoryColumns = `subcategory_id, category_id, name, created_at, created_by, last_updated_at, last_updated_by`

func scanSubcategory(row pgx.Row) (*domain.Subcategory, error) {
	var sub domain.Subcategory
	err := row.Scan(
		&sub.SubcategoryID,
		&sub.CategoryID,
		&sub.Name,
		&sub.CreatedAt,
		&sub.CreatedBy,
		&sub.LastUpdatedAt,
		&sub.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubcategories retrieves the subcategories for a set of categories,
// keyed by category id.
func (r *PgxCategoryRepository) ListSubcategories(ctx context.Context, categoryIDs []string) (map[string][]domain.Subcategory, error) {
	result := make(map[string][]domain.Subcategory)
	if len(categoryIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE category_id = ANY($1) ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sub, err := scanSubcategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subcategory row: %w", err)
		}
		result[sub.CategoryID] = append(result[sub.CategoryID], *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategory rows: %w", err)
	}
	return result, nil
}

// FindSubcategoryByID retrieves a subcategory by its ID.
func (r *PgxCategoryRepository) FindSubcategoryByID(ctx context.Context, subcategoryID string) (*domain.Subcategory, error) {
	query := `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE subcategory_id = $1;`

	sub, err := scanSubcategory(r.Pool.QueryRow(ctx, query, subcategoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subcategory by ID %s: %w", subcategoryID, err)
	}
	return sub, nil
}

// CountCategoryReferences returns how many transactions and plan rows
// reference the category, directly or through one of its subcategories.
func (r *PgxCategoryRepository) CountCategoryReferences(ctx context.Context, categoryID string) (int64, int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE category_id = $1),
			(SELECT COUNT(*) FROM monthly_plans WHERE category_id = $1);
	`
	var transactions, plans int64
	if err := r.Pool.QueryRow(ctx, query, categoryID).Scan(&transactions, &plans); err != nil {
		return 0, 0, fmt.Errorf("failed to count references for category %s: %w", categoryID, err)
	}
	return transactions, plans, nil
}

// CountSubcategoryReferences returns how many transactions and plan rows
// reference the subcategory.
func (r *PgxCategoryRepository) CountSubcategoryReferences(ctx context.Context, subcategoryID string) (int64, int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE subcategory_id = $1),
			(SELECT COUNT(*) FROM monthly_plans WHERE subcategory_id = $1);
	`
	var transactions, plans int64
	if err := r.Pool.QueryRow(ctx, query, subcategoryID).Scan(&transactions, &plans); err != nil {
		return 0, 0, fmt.Errorf("failed to count references for subcategory %s: %w", subcategoryID, err)
	}
	return transactions, plans, nil
}

// SaveCategory inserts a new category.
func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	query := `
		INSERT INTO categories (category_id, scope, owner_id, name, color, sort_order, in_charts, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		category.CategoryID,
		category.Scope,
		nullableOwner(category.OwnerID),
		category.Name,
		category.Color,
		category.SortOrder,
		category.InCharts,
		category.CreatedAt,
		category.CreatedBy,
		category.LastUpdatedAt,
		category.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category named %q already exists", apperrors.ErrDuplicate, category.Name)
		}
		return fmt.Errorf("failed to save category %s: %w", category.CategoryID, err)
	}
	return nil
}

// UpdateCategory updates a category's mutable fields. Transactions and plans
// reference categories by id, so a rename here is the whole rename.
func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, color = $3, sort_order = $4, in_charts = $5, last_updated_at = $6, last_updated_by = $7
		WHERE category_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		category.CategoryID,
		category.Name,
		category.Color,
		category.SortOrder,
		category.InCharts,
		category.LastUpdatedAt,
		category.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category named %q already exists", apperrors.ErrDuplicate, category.Name)
		}
		return fmt.Errorf("failed to update category %s: %w", category.CategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCategoryCascade deletes a category and its subcategories in one
// database transaction. The caller has already verified nothing references
// them.
func (r *PgxCategoryRepository) DeleteCategoryCascade(ctx context.Context, categoryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM subcategories WHERE category_id = $1;`, categoryID); err != nil {
		return fmt.Errorf("failed to delete subcategories of category %s: %w", categoryID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: category is still referenced", apperrors.ErrInUse)
		}
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// SaveSubcategory inserts a new subcategory.
func (r *PgxCategoryRepository) SaveSubcategory(ctx context.Context, subcategory domain.Subcategory) error {
	query := `
		INSERT INTO subcategories (subcategory_id, category_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		subcategory.SubcategoryID,
		subcategory.CategoryID,
		subcategory.Name,
		subcategory.CreatedAt,
		subcategory.CreatedBy,
		subcategory.LastUpdatedAt,
		subcategory.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: subcategory named %q already exists", apperrors.ErrDuplicate, subcategory.Name)
		}
		return fmt.Errorf("failed to save subcategory %s: %w", subcategory.SubcategoryID, err)
	}
	return nil
}

// UpdateSubcategory updates a subcategory's mutable fields.
func (r *PgxCategoryRepository) UpdateSubcategory(ctx context.Context, subcategory domain.Subcategory) error {
	query := `
		UPDATE subcategories
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE subcategory_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		subcategory.SubcategoryID,
		subcategory.Name,
		subcategory.LastUpdatedAt,
		subcategory.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: subcategory named %q already exists", apperrors.ErrDuplicate, subcategory.Name)
		}
		return fmt.Errorf("failed to update subcategory %s: %w", subcategory.SubcategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteSubcategory deletes a subcategory.
func (r *PgxCategoryRepository) DeleteSubcategory(ctx context.Context, subcategoryID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM subcategories WHERE subcategory_id = $1;`, subcategoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: subcategory is still referenced", apperrors.ErrInUse)
		}
		return fmt.Errorf("failed to delete subcategory %s: %w", subcategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// EnsureTransferCategoryInTx finds the owner's transfer category or creates
// it within the given transaction. When the row does not exist yet there is
// nothing for FOR UPDATE to lock, so two first transfers can both reach the
// insert; ON CONFLICT DO NOTHING lets the loser wait out the winner's commit
// and pick up the surviving row on the re-select.
func (r *PgxCategoryRepository) EnsureTransferCategoryInTx(ctx context.Context, tx pgx.Tx, ownerID string, now time.Time) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 AND name = $2 FOR UPDATE;`

	cat, err := scanCategory(tx.QueryRow(ctx, query, ownerID, domain.TransferCategoryName))
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to find transfer category for owner %s: %w", ownerID, err)
	}

	created := domain.Category{
		CategoryID: uuid.NewString(),
		Scope:      domain.ScopeUser,
		OwnerID:    ownerID,
		Name:       domain.TransferCategoryName,
		InCharts:   false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
	insert := `
		INSERT INTO categories (category_id, scope, owner_id, name, color, sort_order, in_charts, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING;
	`
	cmdTag, err := tx.Exec(ctx, insert,
		created.CategoryID,
		created.Scope,
		nullableOwner(created.OwnerID),
		created.Name,
		created.Color,
		created.SortOrder,
		created.InCharts,
		created.CreatedAt,
		created.CreatedBy,
		created.LastUpdatedAt,
		created.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer category for owner %s: %w", ownerID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return &created, nil
	}

	// A concurrent transaction won the insert; its committed row is visible now.
	cat, err = scanCategory(tx.QueryRow(ctx, query, ownerID, domain.TransferCategoryName))
	if err != nil {
		return nil, fmt.Errorf("failed to reload transfer category for owner %s: %w", ownerID, err)
	}
	return cat, nil
}
