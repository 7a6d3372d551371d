package models

import (
	"github.com/shopspring/decimal"
)

// Account is the DB representation of a user ledger row.
type Account struct {
	AccountID     string          `db:"account_id"`
	UserID        string          `db:"user_id"`
	Balance       decimal.Decimal `db:"balance"`
	TotalInvested decimal.Decimal `db:"total_invested"`
	TotalInterest decimal.Decimal `db:"total_interest"`
	AuditFields
}
