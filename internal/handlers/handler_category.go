package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/dto"
	"github.com/budgetbook/backend/internal/middleware"
)

// categoryHandler handles HTTP requests for the category taxonomy.
type categoryHandler struct {
	taxonomyService portssvc.TaxonomySvcFacade
}

// registerCategoryRoutes registers routes related to categories and
// subcategories.
func registerCategoryRoutes(rg *gin.RouterGroup, taxonomyService portssvc.TaxonomySvcFacade) {
	h := &categoryHandler{taxonomyService: taxonomyService}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.listCategories)
		categories.POST("", h.createCategory)
		categories.PUT("/:id", h.updateCategory)
		categories.DELETE("/:id", h.deleteCategory)
		categories.POST("/:id/subcategories", h.createSubcategory)
	}

	subcategories := rg.Group("/subcategories")
	{
		subcategories.PUT("/:id", h.updateSubcategory)
		subcategories.DELETE("/:id", h.deleteSubcategory)
	}
}

// listCategories godoc
// @Summary List categories
// @Description Lists global categories plus the caller's own, each with subcategories
// @Tags categories
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Security BearerAuth
// @Router /categories [get]
func (h *categoryHandler) listCategories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	categories, err := h.taxonomyService.ListCategories(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// createCategory godoc
// @Summary Create a category
// @Description Creates a user-scoped category; names must be unique within the caller's view
// @Tags categories
// @Accept json
// @Produce json
// @Param category body dto.CreateCategoryRequest true "Category details"
// @Success 201 {object} dto.CategoryResponse
// @Failure 409 {object} map[string]string "Name already taken"
// @Security BearerAuth
// @Router /categories [post]
func (h *categoryHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	category, err := h.taxonomyService.CreateCategory(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create category")
		return
	}

	logger.Info("Category created", slog.String("category_id", category.CategoryID))
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(*category, nil))
}

// updateCategory godoc
// @Summary Update a category
// @Description Renames or restyles an owned category; global categories are immutable
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body dto.UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} map[string]string "Category not found"
// @Security BearerAuth
// @Router /categories/{id} [put]
func (h *categoryHandler) updateCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	categoryID := c.Param("id")

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	category, err := h.taxonomyService.UpdateCategory(c.Request.Context(), userID, categoryID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(*category, nil))
}

// deleteCategory godoc
// @Summary Delete a category
// @Description Deletes an owned category and its subcategories when nothing references them
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Category not found"
// @Failure 409 {object} map[string]string "Category still referenced"
// @Security BearerAuth
// @Router /categories/{id} [delete]
func (h *categoryHandler) deleteCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	categoryID := c.Param("id")

	if err := h.taxonomyService.DeleteCategory(c.Request.Context(), userID, categoryID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

// createSubcategory godoc
// @Summary Create a subcategory
// @Description Creates a subcategory under an owned category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param subcategory body dto.CreateSubcategoryRequest true "Subcategory details"
// @Success 201 {object} dto.SubcategoryResponse
// @Failure 404 {object} map[string]string "Category not found"
// @Security BearerAuth
// @Router /categories/{id}/subcategories [post]
func (h *categoryHandler) createSubcategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	categoryID := c.Param("id")

	var req dto.CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubcategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	sub, err := h.taxonomyService.CreateSubcategory(c.Request.Context(), userID, categoryID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create subcategory")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSubcategoryResponse(*sub))
}

// updateSubcategory godoc
// @Summary Update a subcategory
// @Description Renames a subcategory; ownership is checked through the parent category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Subcategory ID"
// @Param subcategory body dto.UpdateSubcategoryRequest true "Fields to update"
// @Success 200 {object} dto.SubcategoryResponse
// @Failure 404 {object} map[string]string "Subcategory not found"
// @Security BearerAuth
// @Router /subcategories/{id} [put]
func (h *categoryHandler) updateSubcategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	subcategoryID := c.Param("id")

	var req dto.UpdateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSubcategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	sub, err := h.taxonomyService.UpdateSubcategory(c.Request.Context(), userID, subcategoryID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update subcategory")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubcategoryResponse(*sub))
}

// deleteSubcategory godoc
// @Summary Delete a subcategory
// @Description Deletes a subcategory when no transactions or plans reference it
// @Tags categories
// @Produce json
// @Param id path string true "Subcategory ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Subcategory not found"
// @Failure 409 {object} map[string]string "Subcategory still referenced"
// @Security BearerAuth
// @Router /subcategories/{id} [delete]
func (h *categoryHandler) deleteSubcategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	subcategoryID := c.Param("id")

	if err := h.taxonomyService.DeleteSubcategory(c.Request.Context(), userID, subcategoryID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete subcategory")
		return
	}
	c.Status(http.StatusNoContent)
}
