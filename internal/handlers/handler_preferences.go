package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/dto"
	"github.com/budgetbook/backend/internal/middleware"
)

// preferencesHandler handles HTTP requests for display preferences.
type preferencesHandler struct {
	userService portssvc.UserSvcFacade
}

// registerPreferencesRoutes registers the preferences routes.
func registerPreferencesRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := &preferencesHandler{userService: userService}

	prefs := rg.Group("/preferences")
	{
		prefs.GET("", h.getPreferences)
		prefs.PUT("", h.updatePreferences)
	}
}

// getPreferences godoc
// @Summary Get display preferences
// @Description Returns the caller's main currency and enabled currency list
// @Tags preferences
// @Produce json
// @Success 200 {object} dto.PreferencesResponse
// @Security BearerAuth
// @Router /preferences [get]
func (h *preferencesHandler) getPreferences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	prefs, err := h.userService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get preferences")
		return
	}
	c.JSON(http.StatusOK, dto.ToPreferencesResponse(prefs))
}

// updatePreferences godoc
// @Summary Update display preferences
// @Description Overwrites the caller's main currency or enabled currency list
// @Tags preferences
// @Accept json
// @Produce json
// @Param preferences body dto.UpdatePreferencesRequest true "Fields to update"
// @Success 200 {object} dto.PreferencesResponse
// @Failure 400 {object} map[string]string "Invalid currency codes"
// @Security BearerAuth
// @Router /preferences [put]
func (h *preferencesHandler) updatePreferences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePreferences", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	prefs, err := h.userService.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update preferences")
		return
	}
	c.JSON(http.StatusOK, dto.ToPreferencesResponse(prefs))
}
