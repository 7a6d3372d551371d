package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies an entry in the audit trail.
type TransactionType string

const (
	TxnDeposit    TransactionType = "DEPOSIT"
	TxnWithdrawal TransactionType = "WITHDRAWAL"
	TxnInterest   TransactionType = "INTEREST"
	TxnBuy        TransactionType = "BUY"
	TxnSell       TransactionType = "SELL"
	TxnSecurity   TransactionType = "SECURITY"
)

// Transaction is one immutable entry in the append-only audit trail.
// Every ledger mutation writes exactly one of these in the same database
// transaction; SECURITY entries carry a zero amount and record
// non-monetary events.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	UserID        string          `json:"userID"`        // FK -> users.user_id
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Detail        string          `json:"detail"` // Free-text description
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"` // Acting user (admin for approvals, system for accrual)
}
