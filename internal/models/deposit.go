package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Deposit is the DB representation of a deposit request.
type Deposit struct {
	DepositID  string          `db:"deposit_id"`
	UserID     string          `db:"user_id"`
	Amount     decimal.Decimal `db:"amount"`
	Method     string          `db:"method"`
	Reference  string          `db:"reference"`
	Status     string          `db:"status"`
	ResolvedAt sql.NullTime    `db:"resolved_at"`
	ResolvedBy sql.NullString  `db:"resolved_by"`
	AuditFields
}

// Withdrawal is the DB representation of a withdrawal request.
type Withdrawal struct {
	WithdrawalID string          `db:"withdrawal_id"`
	UserID       string          `db:"user_id"`
	Amount       decimal.Decimal `db:"amount"`
	Destination  string          `db:"destination"`
	Status       string          `db:"status"`
	ResolvedAt   sql.NullTime    `db:"resolved_at"`
	ResolvedBy   sql.NullString  `db:"resolved_by"`
	AuditFields
}
