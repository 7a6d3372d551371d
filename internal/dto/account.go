package dto

import (
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountResponse defines the data returned for a user's ledger account.
type AccountResponse struct {
	AccountID     string          `json:"accountID"`
	UserID        string          `json:"userID"`
	Balance       decimal.Decimal `json:"balance"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		UserID:        acc.UserID,
		Balance:       acc.Balance,
		TotalInvested: acc.TotalInvested,
		TotalInterest: acc.TotalInterest,
	}
}

// ReconciliationResponse reports drift between the cached projection and the
// transaction log recomputation.
type ReconciliationResponse struct {
	UserID             string          `json:"userID"`
	CachedBalance      decimal.Decimal `json:"cachedBalance"`
	RecomputedBalance  decimal.Decimal `json:"recomputedBalance"`
	CachedInterest     decimal.Decimal `json:"cachedInterest"`
	RecomputedInterest decimal.Decimal `json:"recomputedInterest"`
	Consistent         bool            `json:"consistent"`
}

// ToReconciliationResponse converts a domain report to its DTO.
func ToReconciliationResponse(r *domain.ReconciliationReport) ReconciliationResponse {
	return ReconciliationResponse{
		UserID:             r.UserID,
		CachedBalance:      r.CachedBalance,
		RecomputedBalance:  r.RecomputedBalance,
		CachedInterest:     r.CachedInterest,
		RecomputedInterest: r.RecomputedInterest,
		Consistent:         r.Consistent,
	}
}
