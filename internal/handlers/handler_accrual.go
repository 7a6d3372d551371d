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

// accrualHandler exposes the interest accrual batch job to admins.
type accrualHandler struct {
	accrualService portssvc.AccrualSvcFacade
}

func newAccrualHandler(as portssvc.AccrualSvcFacade) *accrualHandler {
	return &accrualHandler{
		accrualService: as,
	}
}

// registerAdminAccrualRoutes registers the admin-only accrual routes.
func registerAdminAccrualRoutes(rg *gin.RouterGroup, accrualService portssvc.AccrualSvcFacade) {
	h := newAccrualHandler(accrualService)

	accrual := rg.Group("/accrual")
	{
		accrual.POST("/run", h.runAccrual)
		accrual.GET("/latest", h.latestRun)
	}
}

// runAccrual godoc
// @Summary Trigger an interest accrual cycle
// @Description Runs the daily interest accrual batch immediately. At most
// @Description one cycle executes at a time; a concurrent run returns 409
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.AccrualRunResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "A cycle is already running"
// @Failure 500 {object} map[string]string "Accrual cycle failed"
// @Security BearerAuth
// @Router /admin/accrual/run [post]
func (h *accrualHandler) runAccrual(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	run, err := h.accrualService.RunAccrualCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "An accrual cycle is already running"})
			return
		}
		logger.Error("Accrual cycle failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Accrual cycle failed"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccrualRunResponse(run))
}

// latestRun godoc
// @Summary Get the latest accrual run summary
// @Description Retrieves the most recent accrual run's counters
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.AccrualRunResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "No runs recorded yet"
// @Failure 500 {object} map[string]string "Failed to retrieve run"
// @Security BearerAuth
// @Router /admin/accrual/latest [get]
func (h *accrualHandler) latestRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	run, err := h.accrualService.LatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No accrual runs recorded yet"})
			return
		}
		logger.Error("Failed to retrieve latest accrual run", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve latest accrual run"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccrualRunResponse(run))
}
