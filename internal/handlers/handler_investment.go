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

// investmentHandler handles HTTP requests for the investment lifecycle.
type investmentHandler struct {
	investmentService portssvc.InvestmentSvcFacade
}

func newInvestmentHandler(is portssvc.InvestmentSvcFacade) *investmentHandler {
	return &investmentHandler{
		investmentService: is,
	}
}

// registerInvestmentRoutes registers the user-facing investment routes.
func registerInvestmentRoutes(rg *gin.RouterGroup, investmentService portssvc.InvestmentSvcFacade) {
	h := newInvestmentHandler(investmentService)

	investments := rg.Group("/investments")
	{
		investments.POST("", h.createInvestment)
		investments.GET("", h.listInvestments)
		investments.GET("/summary", h.summarizeInvestments)
	}
}

// registerAdminInvestmentRoutes registers the admin-only investment routes.
func registerAdminInvestmentRoutes(rg *gin.RouterGroup, investmentService portssvc.InvestmentSvcFacade) {
	h := newInvestmentHandler(investmentService)

	investments := rg.Group("/investments")
	{
		investments.GET("/pending", h.listPendingInvestments)
		investments.POST("/:id/approve", h.approveInvestment)
		investments.POST("/:id/reject", h.rejectInvestment)
	}
}

// createInvestment godoc
// @Summary Create an investment
// @Description Validates the amount against the chosen plan's band, debits
// @Description the principal and records a PENDING investment. Interest only
// @Description starts accruing after admin approval
// @Tags investments
// @Accept  json
// @Produce  json
// @Param   investment body dto.CreateInvestmentRequest true "Plan key and amount"
// @Success 201 {object} dto.InvestmentResponse
// @Failure 400 {object} map[string]string "Invalid input or amount outside the plan band"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Plan not found"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to create investment"
// @Security BearerAuth
// @Router /investments [post]
func (h *investmentHandler) createInvestment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	investment, err := h.investmentService.CreateInvestment(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient funds"})
		default:
			logger.Error("Failed to create investment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create investment"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvestmentResponse(investment))
}

// listInvestments godoc
// @Summary List the user's investments
// @Description Retrieves the logged-in user's investments, newest first
// @Tags investments
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.InvestmentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list investments"
// @Security BearerAuth
// @Router /investments [get]
func (h *investmentHandler) listInvestments(c *gin.Context) {
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

	investments, err := h.investmentService.ListInvestments(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list investments", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list investments"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListInvestmentResponse(investments))
}

// summarizeInvestments godoc
// @Summary Summarize the user's investments per plan
// @Description Aggregates count, active count, committed principal and
// @Description interest paid per plan, excluding cancelled records
// @Tags investments
// @Produce  json
// @Success 200 {array} dto.InvestmentSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to summarize investments"
// @Security BearerAuth
// @Router /investments/summary [get]
func (h *investmentHandler) summarizeInvestments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summaries, err := h.investmentService.SummarizeInvestments(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to summarize investments", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize investments"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListInvestmentSummaryResponse(summaries))
}

// listPendingInvestments godoc
// @Summary List pending investments
// @Description Retrieves unresolved investments across all users
// @Tags admin
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.InvestmentResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list pending investments"
// @Security BearerAuth
// @Router /admin/investments/pending [get]
func (h *investmentHandler) listPendingInvestments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	investments, err := h.investmentService.ListPendingInvestments(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list pending investments", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending investments"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListInvestmentResponse(investments))
}

// approveInvestment godoc
// @Summary Approve an investment
// @Description Activates a PENDING investment, stamping the accrual start
// @Description date. An investment activates at most once
// @Tags admin
// @Produce  json
// @Param   id path string true "Investment ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Investment not found"
// @Failure 409 {object} map[string]string "Investment already resolved"
// @Failure 500 {object} map[string]string "Failed to approve investment"
// @Security BearerAuth
// @Router /admin/investments/{id}/approve [post]
func (h *investmentHandler) approveInvestment(c *gin.Context) {
	h.resolveInvestment(c, h.investmentService.ApproveInvestment, "approve")
}

// rejectInvestment godoc
// @Summary Reject an investment
// @Description Cancels a PENDING investment and refunds the principal in
// @Description full. No interest is paid
// @Tags admin
// @Produce  json
// @Param   id path string true "Investment ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Investment not found"
// @Failure 409 {object} map[string]string "Investment already resolved"
// @Failure 500 {object} map[string]string "Failed to reject investment"
// @Security BearerAuth
// @Router /admin/investments/{id}/reject [post]
func (h *investmentHandler) rejectInvestment(c *gin.Context) {
	h.resolveInvestment(c, h.investmentService.RejectInvestment, "reject")
}

func (h *investmentHandler) resolveInvestment(c *gin.Context, resolve func(ctx context.Context, investmentID string, actorID string) error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investmentID := c.Param("id")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := resolve(c.Request.Context(), investmentID, actorID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Investment not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Investment already resolved"})
		default:
			logger.Error("Failed to "+action+" investment", slog.String("error", err.Error()), slog.String("investment_id", investmentID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " investment"})
		}
		return
	}

	logger.Info("Investment resolved", slog.String("investment_id", investmentID), slog.String("action", action), slog.String("actor_id", actorID))
	c.Status(http.StatusNoContent)
}
