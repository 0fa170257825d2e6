package dto

import (
	"github.com/budgetbook/backend/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a user category.
type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	Color     string `json:"color"`
	SortOrder int    `json:"sortOrder"`
	InCharts  *bool  `json:"inCharts"` // Defaults to true when omitted
}

// UpdateCategoryRequest defines the mutable category fields.
type UpdateCategoryRequest struct {
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	SortOrder *int    `json:"sortOrder"`
	InCharts  *bool   `json:"inCharts"`
}

// CreateSubcategoryRequest defines the data needed to create a subcategory.
type CreateSubcategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateSubcategoryRequest defines the mutable subcategory fields.
type UpdateSubcategoryRequest struct {
	Name *string `json:"name"`
}

// SubcategoryResponse defines the data returned for a subcategory.
type SubcategoryResponse struct {
	SubcategoryID string `json:"subcategoryID"`
	CategoryID    string `json:"categoryID"`
	Name          string `json:"name"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID    string                `json:"categoryID"`
	Scope         domain.CategoryScope  `json:"scope"`
	Name          string                `json:"name"`
	Color         string                `json:"color"`
	SortOrder     int                   `json:"sortOrder"`
	InCharts      bool                  `json:"inCharts"`
	Subcategories []SubcategoryResponse `json:"subcategories"`
}

// ToSubcategoryResponse converts a domain.Subcategory to its response DTO.
func ToSubcategoryResponse(s domain.Subcategory) SubcategoryResponse {
	return SubcategoryResponse{
		SubcategoryID: s.SubcategoryID,
		CategoryID:    s.CategoryID,
		Name:          s.Name,
	}
}

// ToCategoryResponse converts a category and its subcategories to a DTO.
func ToCategoryResponse(c domain.Category, subs []domain.Subcategory) CategoryResponse {
	subResponses := make([]SubcategoryResponse, len(subs))
	for i, s := range subs {
		subResponses[i] = ToSubcategoryResponse(s)
	}
	return CategoryResponse{
		CategoryID:    c.CategoryID,
		Scope:         c.Scope,
		Name:          c.Name,
		Color:         c.Color,
		SortOrder:     c.SortOrder,
		InCharts:      c.InCharts,
		Subcategories: subResponses,
	}
}
