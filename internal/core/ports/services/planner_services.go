package services

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/budgetbook/backend/internal/dto"
)

// PlannerSvcFacade owns monthly budget plans, spent-vs-planned aggregation
// and reminder derivation.
type PlannerSvcFacade interface {
	// ListPlans returns the owner's plan rows for the month with actual
	// spend joined in.
	ListPlans(ctx context.Context, ownerID string, month domain.Month) ([]domain.PlanWithSpent, error)

	// CreatePlan creates a new plan row.
	CreatePlan(ctx context.Context, ownerID string, req dto.CreatePlanRequest) (*domain.MonthlyPlan, error)

	// UpdatePlan updates an owned plan row.
	UpdatePlan(ctx context.Context, ownerID, planID string, req dto.UpdatePlanRequest) (*domain.MonthlyPlan, error)

	// DeletePlan removes an owned plan row; a miss is a silent no-op.
	DeletePlan(ctx context.Context, ownerID, planID string) error

	// CopyPlans duplicates every plan row from one month into another
	// without deduplicating against existing target rows. Returns how many
	// rows were copied.
	CopyPlans(ctx context.Context, ownerID string, from, to domain.Month) (int64, error)

	// ComputeReminders returns a reminder for every plan row in the month
	// with a reminder date and a positive remaining amount. Complete or
	// overspent plans are excluded.
	ComputeReminders(ctx context.Context, ownerID string, month domain.Month) ([]domain.Reminder, error)
}
