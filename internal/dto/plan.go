package dto

import (
	"time"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePlanRequest defines the data needed to create a monthly plan row.
type CreatePlanRequest struct {
	Month         string          `json:"month" binding:"required"` // "2006-01"
	CategoryID    string          `json:"categoryID" binding:"required"`
	SubcategoryID *string         `json:"subcategoryID"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	ReminderDate  *time.Time      `json:"reminderDate"`
}

// UpdatePlanRequest defines the mutable plan fields.
type UpdatePlanRequest struct {
	Amount       *decimal.Decimal `json:"amount"`
	ReminderDate *time.Time       `json:"reminderDate"`
	// ClearReminder removes the reminder date when true; a nil ReminderDate
	// alone means "leave unchanged".
	ClearReminder bool `json:"clearReminder"`
}

// CopyPlansRequest duplicates every plan row from one month into another.
// Existing rows in the target month are kept; duplicates are possible.
type CopyPlansRequest struct {
	FromMonth string `json:"fromMonth" binding:"required"`
	ToMonth   string `json:"toMonth" binding:"required"`
}

// PlanResponse defines the data returned for a plan row with actuals.
type PlanResponse struct {
	PlanID        string          `json:"planID"`
	Month         string          `json:"month"`
	CategoryID    string          `json:"categoryID"`
	SubcategoryID *string         `json:"subcategoryID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	ReminderDate  *time.Time      `json:"reminderDate,omitempty"`
}

// ToPlanResponse converts a domain.PlanWithSpent to its response DTO.
func ToPlanResponse(p domain.PlanWithSpent) PlanResponse {
	return PlanResponse{
		PlanID:        p.PlanID,
		Month:         p.Month.String(),
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		Amount:        p.Amount,
		Spent:         p.Spent,
		Remaining:     p.Remaining(),
		ReminderDate:  p.ReminderDate,
	}
}

// ToPlanResponses converts a slice of plans with actuals to response DTOs.
func ToPlanResponses(plans []domain.PlanWithSpent) []PlanResponse {
	res := make([]PlanResponse, len(plans))
	for i, p := range plans {
		res[i] = ToPlanResponse(p)
	}
	return res
}

// ReminderResponse defines the data returned for a budget reminder.
// Status is "due" when the reminder date is today or earlier, "upcoming"
// otherwise; the comparison ignores time of day.
type ReminderResponse struct {
	PlanID        string          `json:"planID"`
	Month         string          `json:"month"`
	CategoryID    string          `json:"categoryID"`
	SubcategoryID *string         `json:"subcategoryID,omitempty"`
	ReminderDate  time.Time       `json:"reminderDate"`
	Planned       decimal.Decimal `json:"planned"`
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	Status        string          `json:"status"`
}

// ToReminderResponse converts a domain.Reminder, classifying it against today.
func ToReminderResponse(r domain.Reminder, today time.Time) ReminderResponse {
	status := "upcoming"
	if r.DueOn(today) {
		status = "due"
	}
	return ReminderResponse{
		PlanID:        r.PlanID,
		Month:         r.Month.String(),
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		ReminderDate:  r.ReminderDate,
		Planned:       r.Planned,
		Spent:         r.SpentAbs,
		Remaining:     r.Remaining,
		Status:        status,
	}
}
