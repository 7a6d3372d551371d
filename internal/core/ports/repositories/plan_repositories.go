package repositories

import (
	"context"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
)

// PlanReader defines read operations for the plan catalog
type PlanReader interface {
	// FindPlanByKey retrieves a plan by its tier key.
	FindPlanByKey(ctx context.Context, planKey domain.PlanKey) (*domain.Plan, error)

	// ListPlans retrieves all plans, optionally including retired ones.
	ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error)
}

// PlanWriter defines write operations for the plan catalog
type PlanWriter interface {
	// UpsertPlans inserts or updates plans by key. Idempotent: re-running
	// with identical definitions is a no-op in effect.
	UpsertPlans(ctx context.Context, plans []domain.Plan) error

	// UpdatePlan updates an existing plan's attributes.
	UpdatePlan(ctx context.Context, plan domain.Plan) error
}

// PlanRepositoryFacade combines all plan repository interfaces.
type PlanRepositoryFacade interface {
	PlanReader
	PlanWriter
}
