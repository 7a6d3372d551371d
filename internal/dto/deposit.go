package dto

import (
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDepositRequest defines the data needed to request a deposit.
type CreateDepositRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference"`
}

// DepositResponse defines the data returned for a deposit request.
type DepositResponse struct {
	DepositID  string               `json:"depositID"`
	UserID     string               `json:"userID"`
	Amount     decimal.Decimal      `json:"amount"`
	Method     string               `json:"method"`
	Reference  string               `json:"reference"`
	Status     domain.DepositStatus `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
	ResolvedAt *time.Time           `json:"resolvedAt,omitempty"`
}

// ToDepositResponse converts a domain.Deposit to DepositResponse DTO
func ToDepositResponse(d *domain.Deposit) DepositResponse {
	return DepositResponse{
		DepositID:  d.DepositID,
		UserID:     d.UserID,
		Amount:     d.Amount,
		Method:     d.Method,
		Reference:  d.Reference,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
		ResolvedAt: d.ResolvedAt,
	}
}

// ToListDepositResponse converts a slice of domain.Deposit to response DTOs
func ToListDepositResponse(deposits []domain.Deposit) []DepositResponse {
	res := make([]DepositResponse, len(deposits))
	for i, d := range deposits {
		res[i] = ToDepositResponse(&d)
	}
	return res
}

// CreateWithdrawalRequest defines the data needed to request a withdrawal.
type CreateWithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Destination string          `json:"destination" binding:"required"`
}

// WithdrawalResponse defines the data returned for a withdrawal request.
type WithdrawalResponse struct {
	WithdrawalID string                  `json:"withdrawalID"`
	UserID       string                  `json:"userID"`
	Amount       decimal.Decimal         `json:"amount"`
	Destination  string                  `json:"destination"`
	Status       domain.WithdrawalStatus `json:"status"`
	CreatedAt    time.Time               `json:"createdAt"`
	ResolvedAt   *time.Time              `json:"resolvedAt,omitempty"`
}

// ToWithdrawalResponse converts a domain.Withdrawal to its DTO
func ToWithdrawalResponse(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		WithdrawalID: w.WithdrawalID,
		UserID:       w.UserID,
		Amount:       w.Amount,
		Destination:  w.Destination,
		Status:       w.Status,
		CreatedAt:    w.CreatedAt,
		ResolvedAt:   w.ResolvedAt,
	}
}

// ToListWithdrawalResponse converts a slice of domain.Withdrawal to DTOs
func ToListWithdrawalResponse(withdrawals []domain.Withdrawal) []WithdrawalResponse {
	res := make([]WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		res[i] = ToWithdrawalResponse(&w)
	}
	return res
}
