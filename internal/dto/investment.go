package dto

import (
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInvestmentRequest defines the data needed to open an investment.
type CreateInvestmentRequest struct {
	PlanKey domain.PlanKey  `json:"planKey" binding:"required,oneof=STARTER SILVER GOLD PLATINUM"`
	Amount  decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// InvestmentResponse defines the data returned for an investment record.
type InvestmentResponse struct {
	InvestmentID string                  `json:"investmentID"`
	UserID       string                  `json:"userID"`
	PlanKey      domain.PlanKey          `json:"planKey"`
	Principal    decimal.Decimal         `json:"principal"`
	Status       domain.InvestmentStatus `json:"status"`
	StartDate    *time.Time              `json:"startDate,omitempty"`
	InterestPaid decimal.Decimal         `json:"interestPaid"`
	ClosedAt     *time.Time              `json:"closedAt,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// ToInvestmentResponse converts a domain.Investment to its DTO
func ToInvestmentResponse(inv *domain.Investment) InvestmentResponse {
	return InvestmentResponse{
		InvestmentID: inv.InvestmentID,
		UserID:       inv.UserID,
		PlanKey:      inv.PlanKey,
		Principal:    inv.Principal,
		Status:       inv.Status,
		StartDate:    inv.StartDate,
		InterestPaid: inv.InterestPaid,
		ClosedAt:     inv.ClosedAt,
		CreatedAt:    inv.CreatedAt,
	}
}

// ToListInvestmentResponse converts a slice of domain.Investment to DTOs
func ToListInvestmentResponse(investments []domain.Investment) []InvestmentResponse {
	res := make([]InvestmentResponse, len(investments))
	for i, inv := range investments {
		res[i] = ToInvestmentResponse(&inv)
	}
	return res
}

// InvestmentSummaryResponse aggregates a user's investments for one plan.
type InvestmentSummaryResponse struct {
	PlanKey        domain.PlanKey  `json:"planKey"`
	Count          int             `json:"count"`
	ActiveCount    int             `json:"activeCount"`
	TotalPrincipal decimal.Decimal `json:"totalPrincipal"`
	InterestPaid   decimal.Decimal `json:"interestPaid"`
}

// ToListInvestmentSummaryResponse converts domain summaries to DTOs
func ToListInvestmentSummaryResponse(summaries []domain.InvestmentSummary) []InvestmentSummaryResponse {
	res := make([]InvestmentSummaryResponse, len(summaries))
	for i, s := range summaries {
		res[i] = InvestmentSummaryResponse{
			PlanKey:        s.PlanKey,
			Count:          s.Count,
			ActiveCount:    s.ActiveCount,
			TotalPrincipal: s.TotalPrincipal,
			InterestPaid:   s.InterestPaid,
		}
	}
	return res
}
