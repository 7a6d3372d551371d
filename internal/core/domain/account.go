package domain

import (
	"github.com/shopspring/decimal"
)

// Account is the per-user ledger: spendable balance plus cumulative totals.
// The three figures are a materialized projection of the transaction log;
// ReconcileAccount recomputes them from scratch to detect drift.
type Account struct {
	AccountID     string          `json:"accountID"` // Primary Key (UUID)
	UserID        string          `json:"userID"`    // FK -> users.user_id, one account per user
	Balance       decimal.Decimal `json:"balance"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	AuditFields
}

// ReconciliationReport compares the cached account projection against a
// fresh recomputation from the transaction log.
type ReconciliationReport struct {
	UserID             string          `json:"userID"`
	CachedBalance      decimal.Decimal `json:"cachedBalance"`
	RecomputedBalance  decimal.Decimal `json:"recomputedBalance"`
	CachedInterest     decimal.Decimal `json:"cachedInterest"`
	RecomputedInterest decimal.Decimal `json:"recomputedInterest"`
	Consistent         bool            `json:"consistent"`
}
