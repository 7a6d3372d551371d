package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// defaultPlans is the built-in tier catalog, seeded at startup. Existing
// rows are left untouched so admin edits survive restarts.
var defaultPlans = []domain.Plan{
	{
		PlanKey:      domain.PlanStarter,
		Name:         "Starter",
		MinAmount:    decimal.NewFromInt(100),
		MaxAmount:    decimal.NewFromInt(999),
		InterestRate: decimal.NewFromInt(10),
		DurationDays: 30,
		IsActive:     true,
	},
	{
		PlanKey:      domain.PlanSilver,
		Name:         "Silver",
		MinAmount:    decimal.NewFromInt(1000),
		MaxAmount:    decimal.NewFromInt(4999),
		InterestRate: decimal.NewFromInt(12),
		DurationDays: 60,
		IsActive:     true,
	},
	{
		PlanKey:      domain.PlanGold,
		Name:         "Gold",
		MinAmount:    decimal.NewFromInt(5000),
		MaxAmount:    decimal.NewFromInt(19999),
		InterestRate: decimal.NewFromInt(15),
		DurationDays: 90,
		IsActive:     true,
	},
	{
		PlanKey:      domain.PlanPlatinum,
		Name:         "Platinum",
		MinAmount:    decimal.NewFromInt(20000),
		MaxAmount:    decimal.NewFromInt(100000),
		InterestRate: decimal.NewFromInt(20),
		DurationDays: 180,
		IsActive:     true,
	},
}

type planService struct {
	planRepo portsrepo.PlanRepositoryFacade
}

// NewPlanService creates a new plan catalog service.
func NewPlanService(planRepo portsrepo.PlanRepositoryFacade) portssvc.PlanSvcFacade {
	return &planService{planRepo: planRepo}
}

// GetPlan retrieves a plan by its tier key.
func (s *planService) GetPlan(ctx context.Context, planKey domain.PlanKey) (*domain.Plan, error) {
	plan, err := s.planRepo.FindPlanByKey(ctx, planKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find plan", slog.String("plan_key", string(planKey)), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return plan, nil
}

// ListPlans retrieves plans; includeInactive exposes retired tiers.
func (s *planService) ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error) {
	plans, err := s.planRepo.ListPlans(ctx, includeInactive)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list plans", slog.String("error", err.Error()))
		return nil, err
	}
	return plans, nil
}

// SeedDefaultPlans idempotently upserts the built-in tier set.
func (s *planService) SeedDefaultPlans(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	plans := make([]domain.Plan, len(defaultPlans))
	copy(plans, defaultPlans)
	for i := range plans {
		plans[i].AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "system",
			LastUpdatedAt: now,
			LastUpdatedBy: "system",
		}
	}

	if err := s.planRepo.UpsertPlans(ctx, plans); err != nil {
		logger.Error("Failed to seed plan catalog", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Plan catalog seeded", slog.Int("plans", len(plans)))
	return nil
}

// UpdatePlan applies an admin edit to a plan.
func (s *planService) UpdatePlan(ctx context.Context, planKey domain.PlanKey, req dto.UpdatePlanRequest, actorID string) (*domain.Plan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	plan, err := s.planRepo.FindPlanByKey(ctx, planKey)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.MinAmount != nil {
		plan.MinAmount = *req.MinAmount
	}
	if req.MaxAmount != nil {
		plan.MaxAmount = *req.MaxAmount
	}
	if req.InterestRate != nil {
		plan.InterestRate = *req.InterestRate
	}
	if req.DurationDays != nil {
		plan.DurationDays = *req.DurationDays
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	now := time.Now()
	plan.LastUpdatedAt = now
	plan.LastUpdatedBy = actorID

	if err := s.planRepo.UpdatePlan(ctx, *plan); err != nil {
		logger.Error("Failed to update plan", slog.String("plan_key", string(planKey)), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Plan updated", slog.String("plan_key", string(planKey)), slog.String("actor", actorID))
	return plan, nil
}

// validatePlan enforces the catalog invariants: positive duration, rate in
// [0,100], and a non-inverted amount band.
func validatePlan(plan *domain.Plan) error {
	if plan.DurationDays <= 0 {
		return apperrors.NewAppError(400, "duration must be positive", apperrors.ErrValidation)
	}
	if plan.InterestRate.IsNegative() || plan.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
		return apperrors.NewAppError(400, "interest rate must be between 0 and 100", apperrors.ErrValidation)
	}
	if plan.MinAmount.IsNegative() || plan.MinAmount.GreaterThan(plan.MaxAmount) {
		return apperrors.NewAppError(400, "amount band is invalid", apperrors.ErrValidation)
	}
	return nil
}
