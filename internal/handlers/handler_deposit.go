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

// depositHandler handles HTTP requests for deposit requests.
type depositHandler struct {
	depositService portssvc.DepositSvcFacade
}

func newDepositHandler(ds portssvc.DepositSvcFacade) *depositHandler {
	return &depositHandler{
		depositService: ds,
	}
}

// registerDepositRoutes registers the user-facing deposit routes.
func registerDepositRoutes(rg *gin.RouterGroup, depositService portssvc.DepositSvcFacade) {
	h := newDepositHandler(depositService)

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", h.createDeposit)
		deposits.GET("", h.listDeposits)
	}
}

// registerAdminDepositRoutes registers the admin-only deposit routes.
func registerAdminDepositRoutes(rg *gin.RouterGroup, depositService portssvc.DepositSvcFacade) {
	h := newDepositHandler(depositService)

	deposits := rg.Group("/deposits")
	{
		deposits.GET("/pending", h.listPendingDeposits)
		deposits.POST("/:id/approve", h.approveDeposit)
		deposits.POST("/:id/reject", h.rejectDeposit)
	}
}

// createDeposit godoc
// @Summary Create a deposit request
// @Description Records a PENDING deposit request. The balance is unchanged
// @Description until an admin approves it
// @Tags deposits
// @Accept  json
// @Produce  json
// @Param   deposit body dto.CreateDepositRequest true "Deposit details"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create deposit"
// @Security BearerAuth
// @Router /deposits [post]
func (h *depositHandler) createDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deposit, err := h.depositService.CreateDeposit(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deposit"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToDepositResponse(deposit))
}

// listDeposits godoc
// @Summary List the user's deposit requests
// @Description Retrieves the logged-in user's deposit requests, newest first
// @Tags deposits
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.DepositResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list deposits"
// @Security BearerAuth
// @Router /deposits [get]
func (h *depositHandler) listDeposits(c *gin.Context) {
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

	deposits, err := h.depositService.ListDeposits(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list deposits", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list deposits"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListDepositResponse(deposits))
}

// listPendingDeposits godoc
// @Summary List pending deposit requests
// @Description Retrieves unresolved deposit requests across all users
// @Tags admin
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.DepositResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list pending deposits"
// @Security BearerAuth
// @Router /admin/deposits/pending [get]
func (h *depositHandler) listPendingDeposits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	deposits, err := h.depositService.ListPendingDeposits(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list pending deposits", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending deposits"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListDepositResponse(deposits))
}

// approveDeposit godoc
// @Summary Approve a deposit request
// @Description Credits the user's balance and resolves the request. A
// @Description request resolves at most once
// @Tags admin
// @Produce  json
// @Param   id path string true "Deposit ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Deposit already resolved"
// @Failure 500 {object} map[string]string "Failed to approve deposit"
// @Security BearerAuth
// @Router /admin/deposits/{id}/approve [post]
func (h *depositHandler) approveDeposit(c *gin.Context) {
	h.resolveDeposit(c, h.depositService.ApproveDeposit, "approve")
}

// rejectDeposit godoc
// @Summary Reject a deposit request
// @Description Resolves the request with no ledger effect
// @Tags admin
// @Produce  json
// @Param   id path string true "Deposit ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Deposit already resolved"
// @Failure 500 {object} map[string]string "Failed to reject deposit"
// @Security BearerAuth
// @Router /admin/deposits/{id}/reject [post]
func (h *depositHandler) rejectDeposit(c *gin.Context) {
	h.resolveDeposit(c, h.depositService.RejectDeposit, "reject")
}

// resolveDeposit is the shared approve/reject tail: both map the same
// service errors to the same status codes.
func (h *depositHandler) resolveDeposit(c *gin.Context, resolve func(ctx context.Context, depositID string, actorID string) error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	depositID := c.Param("id")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := resolve(c.Request.Context(), depositID, actorID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Deposit already resolved"})
		default:
			logger.Error("Failed to "+action+" deposit", slog.String("error", err.Error()), slog.String("deposit_id", depositID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " deposit"})
		}
		return
	}

	logger.Info("Deposit resolved", slog.String("deposit_id", depositID), slog.String("action", action), slog.String("actor_id", actorID))
	c.Status(http.StatusNoContent)
}
