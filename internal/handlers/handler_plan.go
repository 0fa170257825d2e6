package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/budgetbook/backend/internal/core/domain"
	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/dto"
	"github.com/budgetbook/backend/internal/middleware"
)

// planHandler handles HTTP requests related to monthly budget plans.
type planHandler struct {
	plannerService portssvc.PlannerSvcFacade
}

// registerPlanRoutes registers routes related to plans and reminders.
func registerPlanRoutes(rg *gin.RouterGroup, plannerService portssvc.PlannerSvcFacade) {
	h := &planHandler{plannerService: plannerService}

	plans := rg.Group("/plans")
	{
		plans.GET("", h.listPlans)
		plans.POST("", h.createPlan)
		plans.PUT("/:id", h.updatePlan)
		plans.DELETE("/:id", h.deletePlan)
		plans.POST("/copy", h.copyPlans)
		plans.GET("/reminders", h.listReminders)
	}
}

func monthParam(c *gin.Context) (domain.Month, error) {
	raw := c.Query("month")
	if raw == "" {
		return domain.Month{}, fmt.Errorf("month query parameter is required")
	}
	return domain.ParseMonth(raw)
}

// listPlans godoc
// @Summary List plans for a month
// @Description Lists the caller's plan rows for a month with spent and remaining amounts joined in
// @Tags plans
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {array} dto.PlanResponse
// @Failure 400 {object} map[string]string "Missing or invalid month"
// @Security BearerAuth
// @Router /plans [get]
func (h *planHandler) listPlans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	month, err := monthParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plans, err := h.plannerService.ListPlans(c.Request.Context(), userID, month)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list plans")
		return
	}
	c.JSON(http.StatusOK, dto.ToPlanResponses(plans))
}

// createPlan godoc
// @Summary Create a plan row
// @Description Creates a budget target for a (category, subcategory-or-none) pair in a month
// @Tags plans
// @Accept json
// @Produce json
// @Param plan body dto.CreatePlanRequest true "Plan details"
// @Success 201 {object} dto.PlanResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Security BearerAuth
// @Router /plans [post]
func (h *planHandler) createPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	plan, err := h.plannerService.CreatePlan(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create plan")
		return
	}

	logger.Info("Plan created", slog.String("plan_id", plan.PlanID))
	c.JSON(http.StatusCreated, dto.ToPlanResponse(domain.PlanWithSpent{MonthlyPlan: *plan}))
}

// updatePlan godoc
// @Summary Update a plan row
// @Description Updates an owned plan's amount or reminder date
// @Tags plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param plan body dto.UpdatePlanRequest true "Fields to update"
// @Success 200 {object} dto.PlanResponse
// @Failure 404 {object} map[string]string "Plan not found"
// @Security BearerAuth
// @Router /plans/{id} [put]
func (h *planHandler) updatePlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	planID := c.Param("id")

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	plan, err := h.plannerService.UpdatePlan(c.Request.Context(), userID, planID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update plan")
		return
	}
	c.JSON(http.StatusOK, dto.ToPlanResponse(domain.PlanWithSpent{MonthlyPlan: *plan}))
}

// deletePlan godoc
// @Summary Delete a plan row
// @Description Deletes an owned plan row; an id the caller does not own is a silent no-op
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 204 "Deleted (or nothing to delete)"
// @Security BearerAuth
// @Router /plans/{id} [delete]
func (h *planHandler) deletePlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	planID := c.Param("id")

	if err := h.plannerService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete plan")
		return
	}
	c.Status(http.StatusNoContent)
}

// copyPlans godoc
// @Summary Copy plans between months
// @Description Duplicates every plan row from one month into another without deduplicating
// @Tags plans
// @Accept json
// @Produce json
// @Param months body dto.CopyPlansRequest true "Source and target months"
// @Success 200 {object} map[string]int64
// @Failure 400 {object} map[string]string "Invalid months"
// @Security BearerAuth
// @Router /plans/copy [post]
func (h *planHandler) copyPlans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CopyPlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CopyPlans", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	from, err := domain.ParseMonth(req.FromMonth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fromMonth: " + err.Error()})
		return
	}
	to, err := domain.ParseMonth(req.ToMonth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid toMonth: " + err.Error()})
		return
	}

	copied, err := h.plannerService.CopyPlans(c.Request.Context(), userID, from, to)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to copy plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"copied": copied})
}

// listReminders godoc
// @Summary List budget reminders for a month
// @Description Returns a reminder for every incomplete plan row with a reminder date, classified as due or upcoming
// @Tags plans
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {array} dto.ReminderResponse
// @Failure 400 {object} map[string]string "Missing or invalid month"
// @Security BearerAuth
// @Router /plans/reminders [get]
func (h *planHandler) listReminders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	month, err := monthParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminders, err := h.plannerService.ComputeReminders(c.Request.Context(), userID, month)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute reminders")
		return
	}

	today := time.Now().UTC()
	responses := make([]dto.ReminderResponse, len(reminders))
	for i, r := range reminders {
		responses[i] = dto.ToReminderResponse(r, today)
	}
	c.JSON(http.StatusOK, responses)
}
