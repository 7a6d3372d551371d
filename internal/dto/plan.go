package dto

import (
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdatePlanRequest defines the admin-editable plan attributes.
// Pointers distinguish zero-value updates from fields not provided.
type UpdatePlanRequest struct {
	Name         *string          `json:"name"`
	MinAmount    *decimal.Decimal `json:"minAmount"`
	MaxAmount    *decimal.Decimal `json:"maxAmount"`
	InterestRate *decimal.Decimal `json:"interestRate"`
	DurationDays *int             `json:"durationDays"`
	IsActive     *bool            `json:"isActive"`
}

// PlanResponse defines the data returned for a plan.
type PlanResponse struct {
	PlanKey      domain.PlanKey  `json:"planKey"`
	Name         string          `json:"name"`
	MinAmount    decimal.Decimal `json:"minAmount"`
	MaxAmount    decimal.Decimal `json:"maxAmount"`
	InterestRate decimal.Decimal `json:"interestRate"`
	DurationDays int             `json:"durationDays"`
	IsActive     bool            `json:"isActive"`
}

// ToPlanResponse converts a domain.Plan to PlanResponse DTO
func ToPlanResponse(p *domain.Plan) PlanResponse {
	return PlanResponse{
		PlanKey:      p.PlanKey,
		Name:         p.Name,
		MinAmount:    p.MinAmount,
		MaxAmount:    p.MaxAmount,
		InterestRate: p.InterestRate,
		DurationDays: p.DurationDays,
		IsActive:     p.IsActive,
	}
}

// ToListPlanResponse converts a slice of domain.Plan to response DTOs
func ToListPlanResponse(plans []domain.Plan) []PlanResponse {
	res := make([]PlanResponse, len(plans))
	for i, p := range plans {
		res[i] = ToPlanResponse(&p)
	}
	return res
}
