package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus is the lifecycle state of a deposit request.
// PENDING -> APPROVED or PENDING -> REJECTED; both are terminal.
type DepositStatus string

const (
	DepositPending  DepositStatus = "PENDING"
	DepositApproved DepositStatus = "APPROVED"
	DepositRejected DepositStatus = "REJECTED"
)

// Deposit is a user's funding request, credited to the ledger only on
// admin approval.
type Deposit struct {
	DepositID  string          `json:"depositID"` // Primary Key (UUID)
	UserID     string          `json:"userID"`    // FK -> users.user_id
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`    // e.g. BANK, CRYPTO; free-form reference
	Reference  string          `json:"reference"` // External payment reference
	Status     DepositStatus   `json:"status"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty"`
	ResolvedBy string          `json:"resolvedBy,omitempty"` // Admin user ID
	AuditFields
}
