package domain

// User is an owner of accounts, categories, transactions and plans.
// Authentication itself is a thin collaborator; the engine only needs the
// user's identity and display preferences.
type User struct {
	UserID       string `json:"userID"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	AuditFields
}

// Preferences holds per-user display settings consumed by the read path.
type Preferences struct {
	UserID string `json:"userID"`
	// MainCurrency is the display currency balances are converted into.
	MainCurrency string `json:"mainCurrency"`
	// EnabledCurrencies is the set of currencies offered in entry forms.
	EnabledCurrencies []string `json:"enabledCurrencies"`
}
