package models

import (
	"github.com/shopspring/decimal"
)

// Plan is the DB representation of an investment tier.
type Plan struct {
	PlanKey      string          `db:"plan_key"`
	Name         string          `db:"name"`
	MinAmount    decimal.Decimal `db:"min_amount"`
	MaxAmount    decimal.Decimal `db:"max_amount"`
	InterestRate decimal.Decimal `db:"interest_rate"`
	DurationDays int             `db:"duration_days"`
	IsActive     bool            `db:"is_active"`
	AuditFields
}
