package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Investment is the DB representation of an investment record.
// Nullable timestamps use sql.Null types; the repository maps them to
// pointers on the domain side.
type Investment struct {
	InvestmentID  string          `db:"investment_id"`
	UserID        string          `db:"user_id"`
	PlanKey       string          `db:"plan_key"`
	Principal     decimal.Decimal `db:"principal"`
	Status        string          `db:"status"`
	StartDate     sql.NullTime    `db:"start_date"`
	InterestPaid  decimal.Decimal `db:"interest_paid"`
	LastAccruedAt sql.NullTime    `db:"last_accrued_at"`
	ClosedAt      sql.NullTime    `db:"closed_at"`
	AuditFields
}
