package services

import (
	"context"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
)

// PlanReaderSvc defines read operations for the plan catalog
type PlanReaderSvc interface {
	// GetPlan retrieves a plan by its tier key.
	GetPlan(ctx context.Context, planKey domain.PlanKey) (*domain.Plan, error)

	// ListPlans retrieves plans; includeInactive exposes retired tiers
	// (admin only).
	ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error)
}

// PlanWriterSvc defines write operations for the plan catalog
type PlanWriterSvc interface {
	// SeedDefaultPlans idempotently upserts the built-in tier set.
	// Safe to run on every startup.
	SeedDefaultPlans(ctx context.Context) error

	// UpdatePlan applies an admin edit to a plan.
	UpdatePlan(ctx context.Context, planKey domain.PlanKey, req dto.UpdatePlanRequest, actorID string) (*domain.Plan, error)
}

// PlanSvcFacade combines all plan-related service interfaces.
type PlanSvcFacade interface {
	PlanReaderSvc
	PlanWriterSvc
}
