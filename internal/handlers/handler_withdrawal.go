package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// withdrawalHandler handles HTTP requests for withdrawal requests.
type withdrawalHandler struct {
	withdrawalService portssvc.WithdrawalSvcFacade
}

func newWithdrawalHandler(ws portssvc.WithdrawalSvcFacade) *withdrawalHandler {
	return &withdrawalHandler{
		withdrawalService: ws,
	}
}

// registerWithdrawalRoutes registers the user-facing withdrawal routes.
func registerWithdrawalRoutes(rg *gin.RouterGroup, withdrawalService portssvc.WithdrawalSvcFacade) {
	h := newWithdrawalHandler(withdrawalService)

	withdrawals := rg.Group("/withdrawals")
	{
		withdrawals.POST("", h.createWithdrawal)
		withdrawals.GET("", h.listWithdrawals)
	}
}

// registerAdminWithdrawalRoutes registers the admin-only withdrawal routes.
func registerAdminWithdrawalRoutes(rg *gin.RouterGroup, withdrawalService portssvc.WithdrawalSvcFacade) {
	h := newWithdrawalHandler(withdrawalService)

	withdrawals := rg.Group("/withdrawals")
	{
		withdrawals.GET("/pending", h.listPendingWithdrawals)
		withdrawals.POST("/:id/approve", h.approveWithdrawal)
		withdrawals.POST("/:id/reject", h.rejectWithdrawal)
	}
}

// createWithdrawal godoc
// @Summary Create a withdrawal request
// @Description Debits the balance immediately, reserving the funds, and
// @Description records a PENDING withdrawal request
// @Tags withdrawals
// @Accept  json
// @Produce  json
// @Param   withdrawal body dto.CreateWithdrawalRequest true "Withdrawal details"
// @Success 201 {object} dto.WithdrawalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to create withdrawal"
// @Security BearerAuth
// @Router /withdrawals [post]
func (h *withdrawalHandler) createWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	withdrawal, err := h.withdrawalService.CreateWithdrawal(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient funds"})
		default:
			logger.Error("Failed to create withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToWithdrawalResponse(withdrawal))
}

// listWithdrawals godoc
// @Summary List the user's withdrawal requests
// @Description Retrieves the logged-in user's withdrawal requests, newest
// @Description first
// @Tags withdrawals
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.WithdrawalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list withdrawals"
// @Security BearerAuth
// @Router /withdrawals [get]
func (h *withdrawalHandler) listWithdrawals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	withdrawals, err := h.withdrawalService.ListWithdrawals(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list withdrawals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list withdrawals"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListWithdrawalResponse(withdrawals))
}

// listPendingWithdrawals godoc
// @Summary List pending withdrawal requests
// @Description Retrieves unresolved withdrawal requests across all users
// @Tags admin
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.WithdrawalResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list pending withdrawals"
// @Security BearerAuth
// @Router /admin/withdrawals/pending [get]
func (h *withdrawalHandler) listPendingWithdrawals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	withdrawals, err := h.withdrawalService.ListPendingWithdrawals(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list pending withdrawals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending withdrawals"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListWithdrawalResponse(withdrawals))
}

// approveWithdrawal godoc
// @Summary Approve a withdrawal request
// @Description Resolves the request. The funds were already debited at
// @Description creation; the payout itself happens off-system
// @Tags admin
// @Produce  json
// @Param   id path string true "Withdrawal ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Withdrawal not found"
// @Failure 409 {object} map[string]string "Withdrawal already resolved"
// @Failure 500 {object} map[string]string "Failed to approve withdrawal"
// @Security BearerAuth
// @Router /admin/withdrawals/{id}/approve [post]
func (h *withdrawalHandler) approveWithdrawal(c *gin.Context) {
	h.resolveWithdrawal(c, h.withdrawalService.ApproveWithdrawal, "approve")
}

// rejectWithdrawal godoc
// @Summary Reject a withdrawal request
// @Description Resolves the request and returns the reserved funds to the
// @Description user's balance
// @Tags admin
// @Produce  json
// @Param   id path string true "Withdrawal ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Withdrawal not found"
// @Failure 409 {object} map[string]string "Withdrawal already resolved"
// @Failure 500 {object} map[string]string "Failed to reject withdrawal"
// @Security BearerAuth
// @Router /admin/withdrawals/{id}/reject [post]
func (h *withdrawalHandler) rejectWithdrawal(c *gin.Context) {
	h.resolveWithdrawal(c, h.withdrawalService.RejectWithdrawal, "reject")
}

func (h *withdrawalHandler) resolveWithdrawal(c *gin.Context, resolve func(ctx context.Context, withdrawalID string, actorID string) error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	withdrawalID := c.Param("id")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := resolve(c.Request.Context(), withdrawalID, actorID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal already resolved"})
		default:
			logger.Error("Failed to "+action+" withdrawal", slog.String("error", err.Error()), slog.String("withdrawal_id", withdrawalID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " withdrawal"})
		}
		return
	}

	logger.Info("Withdrawal resolved", slog.String("withdrawal_id", withdrawalID), slog.String("action", action), slog.String("actor_id", actorID))
	c.Status(http.StatusNoContent)
}
