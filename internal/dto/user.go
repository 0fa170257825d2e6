package dto

import (
	"github.com/budgetbook/backend/internal/core/domain"
)

// RegisterUserRequest defines the data needed to create a user.
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest defines the credentials for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse defines the public view of a user.
type UserResponse struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// ToUserResponse converts a domain.User to its response DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID: u.UserID,
		Email:  u.Email,
		Name:   u.Name,
	}
}

// PreferencesResponse defines the data returned for user preferences.
type PreferencesResponse struct {
	MainCurrency      string   `json:"mainCurrency"`
	EnabledCurrencies []string `json:"enabledCurrencies"`
}

// UpdatePreferencesRequest defines the mutable preference fields.
type UpdatePreferencesRequest struct {
	MainCurrency      *string  `json:"mainCurrency"`
	EnabledCurrencies []string `json:"enabledCurrencies"`
}

// ToPreferencesResponse converts domain.Preferences to its response DTO.
func ToPreferencesResponse(p *domain.Preferences) PreferencesResponse {
	return PreferencesResponse{
		MainCurrency:      p.MainCurrency,
		EnabledCurrencies: p.EnabledCurrencies,
	}
}
