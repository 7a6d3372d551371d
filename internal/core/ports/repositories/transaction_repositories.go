package repositories

import (
	"context"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for the audit trail
type TransactionReader interface {
	// ListTransactionsByUser retrieves a user's transactions, newest first.
	ListTransactionsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Transaction, error)

	// SumAmountsByUser totals transaction amounts per type for one user.
	// Used by the reconciliation check to recompute the ledger projection.
	SumAmountsByUser(ctx context.Context, userID string) (map[domain.TransactionType]decimal.Decimal, error)
}

// TransactionWriter defines the single, append-only write operation.
type TransactionWriter interface {
	// SaveTransactionInTx appends an audit entry within a transaction.
	// There is no update or delete path.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines the audit trail interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
