package dto

import (
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionResponse defines the data returned for an audit trail entry.
type TransactionResponse struct {
	TransactionID string                 `json:"transactionID"`
	Type          domain.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	Detail        string                 `json:"detail"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Type:          t.Type,
		Amount:        t.Amount,
		Detail:        t.Detail,
		CreatedAt:     t.CreatedAt,
	}
}

// ToListTransactionResponse converts a slice of domain.Transaction to DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(&t)
	}
	return res
}

// ListParams defines common pagination query parameters.
type ListParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
