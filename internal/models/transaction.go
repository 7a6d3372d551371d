package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the DB representation of an audit trail entry.
// Rows are append-only; there is no update or delete path.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	UserID        string          `db:"user_id"`
	Type          string          `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	Detail        string          `db:"detail"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}
