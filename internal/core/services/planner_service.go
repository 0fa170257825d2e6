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

// plannerService owns monthly budget plans: plan-vs-actual aggregation over
// half-open month intervals and reminder derivation.
type plannerService struct {
	planRepo     portsrepo.PlanRepositoryFacade
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewPlannerService creates a new budget planner service.
func NewPlannerService(planRepo portsrepo.PlanRepositoryFacade, categoryRepo portsrepo.CategoryRepositoryFacade) portssvc.PlannerSvcFacade {
	return &plannerService{planRepo: planRepo, categoryRepo: categoryRepo}
}

var _ portssvc.PlannerSvcFacade = (*plannerService)(nil)

// ListPlans returns the owner's plan rows for the month with actual spend
// joined in. Spend is the signed sum of transactions inside
// [monthStart, nextMonthStart) matching the plan's category and exact
// subcategory rule.
func (s *plannerService) ListPlans(ctx context.Context, ownerID string, month domain.Month) ([]domain.PlanWithSpent, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if month.IsZero() {
		return nil, fmt.Errorf("%w: month is required", apperrors.ErrValidation)
	}

	plans, err := s.planRepo.ListPlansWithSpent(ctx, ownerID, month)
	if err != nil {
		logger.Error("Failed to list plans", "month", month.String(), "error", err.Error())
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []domain.PlanWithSpent{}
	}
	return plans, nil
}

// CreatePlan creates a new plan row. Duplicate (month, category,
// subcategory) targets are not rejected; duplicates are a known,
// user-correctable state.
func (s *plannerService) CreatePlan(ctx context.Context, ownerID string, req dto.CreatePlanRequest) (*domain.MonthlyPlan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	month, err := domain.ParseMonth(req.Month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must not be zero", apperrors.ErrValidation)
	}
	if err := s.validateTaxonomy(ctx, ownerID, req.CategoryID, req.SubcategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	plan := domain.MonthlyPlan{
		PlanID:        uuid.NewString(),
		OwnerID:       ownerID,
		Month:         month,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Amount:        req.Amount,
		ReminderDate:  req.ReminderDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}

	if err := s.planRepo.SavePlan(ctx, plan); err != nil {
		logger.Error("Failed to save plan", "error", err.Error())
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	logger.Info("Plan created", "plan_id", plan.PlanID, "month", month.String())
	return &plan, nil
}

// UpdatePlan updates an owned plan row's amount or reminder date.
func (s *plannerService) UpdatePlan(ctx context.Context, ownerID, planID string, req dto.UpdatePlanRequest) (*domain.MonthlyPlan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	plan, err := s.planRepo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}

	updated := false
	if req.Amount != nil {
		if req.Amount.IsZero() {
			return nil, fmt.Errorf("%w: amount must not be zero", apperrors.ErrValidation)
		}
		plan.Amount = *req.Amount
		updated = true
	}
	if req.ClearReminder {
		plan.ReminderDate = nil
		updated = true
	} else if req.ReminderDate != nil {
		plan.ReminderDate = req.ReminderDate
		updated = true
	}
	if !updated {
		return plan, nil
	}

	plan.LastUpdatedAt = time.Now().UTC()
	plan.LastUpdatedBy = ownerID

	if err := s.planRepo.UpdatePlan(ctx, *plan); err != nil {
		logger.Error("Failed to update plan", "plan_id", planID, "error", err.Error())
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return plan, nil
}

// DeletePlan removes an owned plan row; a miss is a silent no-op.
func (s *plannerService) DeletePlan(ctx context.Context, ownerID, planID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	deleted, err := s.planRepo.DeletePlan(ctx, ownerID, planID)
	if err != nil {
		logger.Error("Failed to delete plan", "plan_id", planID, "error", err.Error())
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if deleted == 0 {
		logger.Debug("Delete matched no owned plan", "plan_id", planID)
	}
	return nil
}

// CopyPlans duplicates every plan row from one month into another. Existing
// rows in the target month are left alone, so copying twice doubles the
// targets; that is the documented behavior, not corrected here.
func (s *plannerService) CopyPlans(ctx context.Context, ownerID string, from, to domain.Month) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if from.IsZero() || to.IsZero() {
		return 0, fmt.Errorf("%w: both months are required", apperrors.ErrValidation)
	}
	if from == to {
		return 0, fmt.Errorf("%w: source and target month must differ", apperrors.ErrValidation)
	}

	copied, err := s.planRepo.CopyPlans(ctx, ownerID, from, to, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to copy plans", "from", from.String(), "to", to.String(), "error", err.Error())
		return 0, fmt.Errorf("failed to copy plans: %w", err)
	}

	logger.Info("Plans copied", "from", from.String(), "to", to.String(), "count", copied)
	return copied, nil
}

// ComputeReminders returns a reminder for every plan row in the month with
// a reminder date and remaining > 0. Fully spent and overspent plans are
// complete: reminders nudge toward unmet obligations, they do not flag
// overspending.
func (s *plannerService) ComputeReminders(ctx context.Context, ownerID string, month domain.Month) ([]domain.Reminder, error) {
	plans, err := s.ListPlans(ctx, ownerID, month)
	if err != nil {
		return nil, err
	}

	reminders := []domain.Reminder{}
	for _, p := range plans {
		if p.ReminderDate == nil {
			continue
		}
		remaining := p.Remaining()
		if remaining.Sign() <= 0 {
			continue
		}
		reminders = append(reminders, domain.Reminder{
			PlanID:        p.PlanID,
			CategoryID:    p.CategoryID,
			SubcategoryID: p.SubcategoryID,
			Month:         p.Month,
			ReminderDate:  *p.ReminderDate,
			Planned:       p.Amount.Abs(),
			SpentAbs:      p.Spent.Abs(),
			Remaining:     remaining,
		})
	}
	return reminders, nil
}

// validateTaxonomy checks category visibility and subcategory parentage
// before a plan row is written.
func (s *plannerService) validateTaxonomy(ctx context.Context, ownerID, categoryID string, subcategoryID *string) error {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: category %s", apperrors.ErrValidation, categoryID)
		}
		return err
	}
	if !category.VisibleTo(ownerID) {
		return fmt.Errorf("%w: category %s", apperrors.ErrValidation, categoryID)
	}

	if subcategoryID != nil {
		subcategory, err := s.categoryRepo.FindSubcategoryByID(ctx, *subcategoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: subcategory %s", apperrors.ErrValidation, *subcategoryID)
			}
			return err
		}
		if subcategory.CategoryID != categoryID {
			return fmt.Errorf("%w: subcategory %s does not belong to category %s", apperrors.ErrValidation, *subcategoryID, categoryID)
		}
	}
	return nil
}
