package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/dto"
	"github.com/budgetbook/backend/internal/middleware"
)

// transferHandler handles HTTP requests for account-to-account transfers.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

// registerTransferRoutes registers the transfer route.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := &transferHandler{transferService: transferService}
	rg.POST("/transfers", h.createTransfer)
}

// createTransfer godoc
// @Summary Transfer between accounts
// @Description Posts a withdrawal and a deposit as one atomic operation; both legs share a timestamp and the owner's transfer category
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	withdrawal, deposit, err := h.transferService.Transfer(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to transfer")
		return
	}

	logger.Info("Transfer completed",
		slog.String("withdrawal_id", withdrawal.TransactionID),
		slog.String("deposit_id", deposit.TransactionID),
	)
	c.JSON(http.StatusCreated, dto.TransferResponse{
		Withdrawal: dto.ToTransactionResponse(withdrawal),
		Deposit:    dto.ToTransactionResponse(deposit),
	})
}
