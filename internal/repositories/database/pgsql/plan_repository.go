package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/budgetbook/backend/internal/apperrors"
	"github.com/budgetbook/backend/internal/core/domain"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
)

type PgxPlanRepository struct {
	BaseRepository
}

// newPgxPlanRepository creates a new repository for monthly plan data.
func newPgxPlanRepository(pool DBPool) *PgxPlanRepository {
	return &PgxPlanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PlanRepositoryFacade = (*PgxPlanRepository)(nil)

const planColumns = `plan_id, owner_id, month_start, category_id, subcategory_id, amount, reminder_date, created_at, created_by, last_updated_at, last_updated_by`

func scanPlan(row pgx.Row) (*domain.MonthlyPlan, error) {
	var plan domain.MonthlyPlan
	var monthStart time.Time
	var subcategoryID sql.NullString
	var reminderDate sql.NullTime
	err := row.Scan(
		&plan.PlanID,
		&plan.OwnerID,
		&monthStart,
		&plan.CategoryID,
		&subcategoryID,
		&plan.Amount,
		&reminderDate,
		&plan.CreatedAt,
		&plan.CreatedBy,
		&plan.LastUpdatedAt,
		&plan.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	plan.Month = domain.MonthOf(monthStart.UTC())
	if subcategoryID.Valid {
		plan.SubcategoryID = &subcategoryID.String
	}
	if reminderDate.Valid {
		t := reminderDate.Time.UTC()
		plan.ReminderDate = &t
	}
	return &plan, nil
}

// FindPlanByID retrieves a plan row by its ID.
func (r *PgxPlanRepository) FindPlanByID(ctx context.Context, planID string) (*domain.MonthlyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM monthly_plans WHERE plan_id = $1;`

	plan, err := scanPlan(r.Pool.QueryRow(ctx, query, planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find plan by ID %s: %w", planID, err)
	}
	return plan, nil
}

// ListPlansWithSpent retrieves the owner's plan rows for a month joined with
// the signed sum of matching transactions. Matching is exact on the
// (category, subcategory-or-none) pair: the NOT DISTINCT comparison keeps a
// NULL plan subcategory from swallowing subcategory-tagged spend. The month
// window is half open, so the first instant of the next month never leaks in.
func (r *PgxPlanRepository) ListPlansWithSpent(ctx context.Context, ownerID string, month domain.Month) ([]domain.PlanWithSpent, error) {
	start, end := month.Bounds()

	query := `
		SELECT p.plan_id, p.owner_id, p.month_start, p.category_id, p.subcategory_id, p.amount, p.reminder_date,
		       p.created_at, p.created_by, p.last_updated_at, p.last_updated_by,
		       COALESCE(SUM(t.amount), 0) AS spent
		FROM monthly_plans p
		LEFT JOIN transactions t
			ON t.owner_id = p.owner_id
			AND t.category_id = p.category_id
			AND t.subcategory_id IS NOT DISTINCT FROM p.subcategory_id
			AND t.effective_date >= $3
			AND t.effective_date < $4
		WHERE p.owner_id = $1 AND p.month_start = $2
		GROUP BY p.plan_id
		ORDER BY p.created_at;
	`

	rows, err := r.Pool.Query(ctx, query, ownerID, start, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans for owner %s month %s: %w", ownerID, month, err)
	}
	defer rows.Close()

	plans := []domain.PlanWithSpent{}
	for rows.Next() {
		var pws domain.PlanWithSpent
		var monthStart time.Time
		var subcategoryID sql.NullString
		var reminderDate sql.NullTime
		err := rows.Scan(
			&pws.PlanID,
			&pws.OwnerID,
			&monthStart,
			&pws.CategoryID,
			&subcategoryID,
			&pws.Amount,
			&reminderDate,
			&pws.CreatedAt,
			&pws.CreatedBy,
			&pws.LastUpdatedAt,
			&pws.LastUpdatedBy,
			&pws.Spent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		pws.Month = domain.MonthOf(monthStart.UTC())
		if subcategoryID.Valid {
			pws.SubcategoryID = &subcategoryID.String
		}
		if reminderDate.Valid {
			t := reminderDate.Time.UTC()
			pws.ReminderDate = &t
		}
		plans = append(plans, pws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plan rows: %w", err)
	}
	return plans, nil
}

// SavePlan inserts a new plan row.
func (r *PgxPlanRepository) SavePlan(ctx context.Context, plan domain.MonthlyPlan) error {
	start, _ := plan.Month.Bounds()
	query := `
		INSERT INTO monthly_plans (plan_id, owner_id, month_start, category_id, subcategory_id, amount, reminder_date, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	var reminder sql.NullTime
	if plan.ReminderDate != nil {
		reminder = sql.NullTime{Time: *plan.ReminderDate, Valid: true}
	}
	_, err := r.Pool.Exec(ctx, query,
		plan.PlanID,
		plan.OwnerID,
		start,
		plan.CategoryID,
		nullableString(plan.SubcategoryID),
		plan.Amount,
		reminder,
		plan.CreatedAt,
		plan.CreatedBy,
		plan.LastUpdatedAt,
		plan.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", plan.PlanID, err)
	}
	return nil
}

// UpdatePlan updates a plan row's mutable fields.
func (r *PgxPlanRepository) UpdatePlan(ctx context.Context, plan domain.MonthlyPlan) error {
	query := `
		UPDATE monthly_plans
		SET category_id = $2, subcategory_id = $3, amount = $4, reminder_date = $5, last_updated_at = $6, last_updated_by = $7
		WHERE plan_id = $1;
	`
	var reminder sql.NullTime
	if plan.ReminderDate != nil {
		reminder = sql.NullTime{Time: *plan.ReminderDate, Valid: true}
	}
	cmdTag, err := r.Pool.Exec(ctx, query,
		plan.PlanID,
		plan.CategoryID,
		nullableString(plan.SubcategoryID),
		plan.Amount,
		reminder,
		plan.LastUpdatedAt,
		plan.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan %s: %w", plan.PlanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeletePlan deletes the plan row where owned by ownerID.
func (r *PgxPlanRepository) DeletePlan(ctx context.Context, ownerID, planID string) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM monthly_plans WHERE owner_id = $1 AND plan_id = $2;`, ownerID, planID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete plan %s: %w", planID, err)
	}
	return cmdTag.RowsAffected(), nil
}

// CopyPlans duplicates every plan row from one month into another for the
// owner. A single INSERT .. SELECT keeps the copy atomic; rows already in
// the target month are left alone and may end up duplicated, matching the
// write-twice-get-two semantics of manual plan creation.
func (r *PgxPlanRepository) CopyPlans(ctx context.Context, ownerID string, from, to domain.Month, now time.Time) (int64, error) {
	fromStart, _ := from.Bounds()
	toStart, _ := to.Bounds()

	query := `
		INSERT INTO monthly_plans (plan_id, owner_id, month_start, category_id, subcategory_id, amount, reminder_date, created_at, created_by, last_updated_at, last_updated_by)
		SELECT gen_random_uuid(), owner_id, $3, category_id, subcategory_id, amount, NULL, $4, owner_id, $4, owner_id
		FROM monthly_plans
		WHERE owner_id = $1 AND month_start = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, ownerID, fromStart, toStart, now)
	if err != nil {
		return 0, fmt.Errorf("failed to copy plans from %s to %s: %w", from, to, err)
	}
	return cmdTag.RowsAffected(), nil
}
