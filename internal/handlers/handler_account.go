package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests for the user's ledger account.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers the account routes.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	account := rg.Group("/account")
	{
		account.GET("", h.getAccount)
		account.POST("/reconcile", h.reconcileAccount)
	}
}

// getAccount godoc
// @Summary Get the account summary
// @Description Retrieves the logged-in user's balances: available, invested
// @Description principal and cumulative interest earned
// @Tags account
// @Produce  json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /account [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.GetAccountForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// reconcileAccount godoc
// @Summary Reconcile the account against its transaction log
// @Description Recomputes balance and cumulative interest from the audit
// @Description trail and reports any drift against the cached account fields
// @Tags account
// @Produce  json
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to reconcile account"
// @Security BearerAuth
// @Router /account/reconcile [post]
func (h *accountHandler) reconcileAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.accountService.ReconcileAccount(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to reconcile account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationResponse(report))
}
