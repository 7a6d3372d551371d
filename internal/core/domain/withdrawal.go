package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
)

// Withdrawal is a user's payout request. The amount is debited from the
// ledger at request time so pending withdrawals cannot be double-spent;
// rejection refunds it.
type Withdrawal struct {
	WithdrawalID string           `json:"withdrawalID"` // Primary Key (UUID)
	UserID       string           `json:"userID"`       // FK -> users.user_id
	Amount       decimal.Decimal  `json:"amount"`
	Destination  string           `json:"destination"` // Bank account / wallet address
	Status       WithdrawalStatus `json:"status"`
	ResolvedAt   *time.Time       `json:"resolvedAt,omitempty"`
	ResolvedBy   string           `json:"resolvedBy,omitempty"` // Admin user ID
	AuditFields
}
