package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// planHandler handles HTTP requests for the investment plan catalog.
type planHandler struct {
	planService portssvc.PlanSvcFacade
}

func newPlanHandler(ps portssvc.PlanSvcFacade) *planHandler {
	return &planHandler{
		planService: ps,
	}
}

// registerPlanRoutes registers the read-only plan catalog routes.
func registerPlanRoutes(rg *gin.RouterGroup, planService portssvc.PlanSvcFacade) {
	h := newPlanHandler(planService)

	plans := rg.Group("/plans")
	{
		plans.GET("", h.listPlans)
		plans.GET("/:key", h.getPlan)
	}
}

// registerAdminPlanRoutes registers the admin-only plan catalog routes.
func registerAdminPlanRoutes(rg *gin.RouterGroup, planService portssvc.PlanSvcFacade) {
	h := newPlanHandler(planService)
	rg.PUT("/plans/:key", h.updatePlan)
}

// listPlans godoc
// @Summary List investment plans
// @Description Retrieves the plan catalog. Active tiers only, unless the
// @Description caller is an admin and passes includeInactive=true
// @Tags plans
// @Produce  json
// @Param   includeInactive query bool false "Include retired tiers (admin only)"
// @Success 200 {array} dto.PlanResponse
// @Failure 500 {object} map[string]string "Failed to list plans"
// @Security BearerAuth
// @Router /plans [get]
func (h *planHandler) listPlans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	includeInactive := false
	if c.Query("includeInactive") == "true" {
		role, _ := middleware.GetUserRoleFromContext(c)
		includeInactive = role == string(domain.RoleAdmin)
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), includeInactive)
	if err != nil {
		logger.Error("Failed to list plans", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list plans"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListPlanResponse(plans))
}

// getPlan godoc
// @Summary Get a plan by tier key
// @Description Retrieves a single plan from the catalog
// @Tags plans
// @Produce  json
// @Param   key path string true "Plan tier key" Enums(STARTER, SILVER, GOLD, PLATINUM)
// @Success 200 {object} dto.PlanResponse
// @Failure 404 {object} map[string]string "Plan not found"
// @Failure 500 {object} map[string]string "Failed to retrieve plan"
// @Security BearerAuth
// @Router /plans/{key} [get]
func (h *planHandler) getPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	planKey := domain.PlanKey(c.Param("key"))

	plan, err := h.planService.GetPlan(c.Request.Context(), planKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		} else {
			logger.Error("Failed to get plan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve plan"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanResponse(plan))
}

// updatePlan godoc
// @Summary Update a plan
// @Description Applies an admin edit to a plan's band, rate, term or active
// @Description flag. Existing investments keep their captured terms
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   key path string true "Plan tier key"
// @Param   plan body dto.UpdatePlanRequest true "Fields to update"
// @Success 200 {object} dto.PlanResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Plan not found"
// @Failure 500 {object} map[string]string "Failed to update plan"
// @Security BearerAuth
// @Router /admin/plans/{key} [put]
func (h *planHandler) updatePlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	planKey := domain.PlanKey(c.Param("key"))

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), planKey, req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update plan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
		}
		return
	}

	logger.Info("Plan updated", slog.String("plan_key", string(planKey)), slog.String("actor_id", actorID))
	c.JSON(http.StatusOK, dto.ToPlanResponse(plan))
}
