package domain

import (
	"github.com/shopspring/decimal"
)

// PlanKey identifies an investment tier. The set is fixed; new tiers are
// introduced through seeding or the admin plan edit path.
type PlanKey string

const (
	PlanStarter  PlanKey = "STARTER"
	PlanSilver   PlanKey = "SILVER"
	PlanGold     PlanKey = "GOLD"
	PlanPlatinum PlanKey = "PLATINUM"
)

// Plan is a fixed-rate, fixed-duration investment tier.
// InterestRate is a percentage applied once over the full duration,
// not an annualized figure.
type Plan struct {
	PlanKey      PlanKey         `json:"planKey"` // Primary Key
	Name         string          `json:"name"`
	MinAmount    decimal.Decimal `json:"minAmount"`
	MaxAmount    decimal.Decimal `json:"maxAmount"`
	InterestRate decimal.Decimal `json:"interestRate"` // Percent, 0..100
	DurationDays int             `json:"durationDays"` // > 0
	IsActive     bool            `json:"isActive"`     // Retired plans stay resolvable for old records
	AuditFields
}

// TotalInterest returns the interest owed over the full term for a principal.
func (p Plan) TotalInterest(principal decimal.Decimal) decimal.Decimal {
	return principal.Mul(p.InterestRate).Div(decimal.NewFromInt(100))
}

// DailyInterest returns one day's share of the full-term interest.
func (p Plan) DailyInterest(principal decimal.Decimal) decimal.Decimal {
	if p.DurationDays <= 0 {
		return decimal.Zero
	}
	return p.TotalInterest(principal).Div(decimal.NewFromInt(int64(p.DurationDays)))
}
