package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPlan is one budget target for a (category, subcategory-or-none)
// pair within a single month. Uniqueness of the pair is intended but not
// mechanically enforced; the copy operation can produce duplicates.
type MonthlyPlan struct {
	PlanID        string          `json:"planID"`
	OwnerID       string          `json:"ownerID"`
	Month         Month           `json:"month"`
	CategoryID    string          `json:"categoryID"`
	SubcategoryID *string         `json:"subcategoryID,omitempty"`
	Amount        decimal.Decimal `json:"amount"` // Signed planned amount
	ReminderDate  *time.Time      `json:"reminderDate,omitempty"`
	AuditFields
}

// PlanWithSpent pairs a plan row with the signed sum of matching
// transactions inside the plan's month. A plan without a subcategory matches
// only transactions without a subcategory; general and subcategory-specific
// spend never roll up into each other.
type PlanWithSpent struct {
	MonthlyPlan
	Spent decimal.Decimal `json:"spent"`
}

// Remaining returns |planned| - |spent|. A non-positive result means the
// plan is complete (fully spent or overspent).
func (p PlanWithSpent) Remaining() decimal.Decimal {
	return p.Amount.Abs().Sub(p.Spent.Abs())
}

// Reminder surfaces an incomplete plan row with a reminder date. Rows whose
// remaining amount is zero or negative are never turned into reminders:
// reminders nudge toward unmet obligations, they do not flag overspending.
type Reminder struct {
	PlanID        string          `json:"planID"`
	CategoryID    string          `json:"categoryID"`
	SubcategoryID *string         `json:"subcategoryID,omitempty"`
	Month         Month           `json:"month"`
	ReminderDate  time.Time       `json:"reminderDate"`
	Planned       decimal.Decimal `json:"planned"`   // |plan amount|
	SpentAbs      decimal.Decimal `json:"spentAbs"`  // |spent|
	Remaining     decimal.Decimal `json:"remaining"` // Planned - SpentAbs, always > 0
}

// DueOn reports whether the reminder is due on the given day, comparing
// dates only and ignoring time of day.
func (r Reminder) DueOn(today time.Time) bool {
	ry, rm, rd := r.ReminderDate.UTC().Date()
	ty, tm, td := today.UTC().Date()
	reminder := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	day := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return !reminder.After(day)
}
