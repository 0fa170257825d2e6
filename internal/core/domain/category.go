package domain

// CategoryScope distinguishes shared system categories from user-owned ones.
// Modelling the scope as an explicit variant keeps accidental cross-user
// mutation out of the write paths: services must call MutableBy before
// touching a category.
type CategoryScope string

const (
	// ScopeGlobal marks a system category visible to every user and mutable by none.
	ScopeGlobal CategoryScope = "GLOBAL"
	// ScopeUser marks a category owned and mutable by exactly one user.
	ScopeUser CategoryScope = "USER"
)

// TransferCategoryName is the name of the per-owner category that tags both
// legs of an account-to-account transfer. It is created lazily on first
// transfer and excluded from chart aggregation.
const TransferCategoryName = "Transfer"

// Category groups transactions for budgeting and reporting.
type Category struct {
	CategoryID string        `json:"categoryID"`
	Scope      CategoryScope `json:"scope"`
	OwnerID    string        `json:"ownerID"` // Empty for ScopeGlobal
	Name       string        `json:"name"`
	Color      string        `json:"color"`
	SortOrder  int           `json:"sortOrder"`
	InCharts   bool          `json:"inCharts"`
	AuditFields
}

// VisibleTo reports whether the category may appear in the user's listings.
func (c Category) VisibleTo(userID string) bool {
	return c.Scope == ScopeGlobal || c.OwnerID == userID
}

// MutableBy reports whether the user may rename or delete the category.
// Global categories are never mutable through the API.
func (c Category) MutableBy(userID string) bool {
	return c.Scope == ScopeUser && c.OwnerID == userID
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	SubcategoryID string `json:"subcategoryID"`
	CategoryID    string `json:"categoryID"`
	Name          string `json:"name"`
	AuditFields
}
