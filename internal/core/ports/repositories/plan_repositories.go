package repositories

import (
	"context"
	"time"

	"github.com/budgetbook/backend/internal/core/domain"
)

// PlanReader defines read operations for monthly plans.
type PlanReader interface {
	// FindPlanByID retrieves a plan row by its unique identifier.
	FindPlanByID(ctx context.Context, planID string) (*domain.MonthlyPlan, error)

	// ListPlansWithSpent retrieves the owner's plan rows for a month, each
	// joined with the signed sum of matching transactions inside the month's
	// half-open interval. Subcategory matching is exact: a plan without a
	// subcategory only matches transactions without one.
	ListPlansWithSpent(ctx context.Context, ownerID string, month domain.Month) ([]domain.PlanWithSpent, error)
}

// PlanWriter defines write operations for monthly plans.
type PlanWriter interface {
	// SavePlan persists a new plan row.
	SavePlan(ctx context.Context, plan domain.MonthlyPlan) error

	// UpdatePlan updates a plan row's mutable fields.
	UpdatePlan(ctx context.Context, plan domain.MonthlyPlan) error

	// DeletePlan deletes the plan row where owned by ownerID, returning the
	// number of rows removed.
	DeletePlan(ctx context.Context, ownerID, planID string) (int64, error)

	// CopyPlans duplicates every plan row from one month into another for
	// the owner, preserving category, subcategory and amount. Rows already
	// present in the target month are not deduplicated. Returns the number
	// of rows copied.
	CopyPlans(ctx context.Context, ownerID string, from, to domain.Month, now time.Time) (int64, error)
}

// PlanRepositoryFacade combines all plan repository interfaces.
type PlanRepositoryFacade interface {
	PlanReader
	PlanWriter
}
