package pgsql

import (
	"context"
	"fmt"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	"github.com/cryptonest/cryptonest_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for the audit trail.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// ListTransactionsByUser retrieves a user's audit entries, newest first.
func (r *PgxTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT transaction_id, user_id, type, amount, detail, created_at, created_by
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(&m.TransactionID, &m.UserID, &m.Type, &m.Amount, &m.Detail, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, domain.Transaction{
			TransactionID: m.TransactionID,
			UserID:        m.UserID,
			Type:          domain.TransactionType(m.Type),
			Amount:        m.Amount,
			Detail:        m.Detail,
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
		})
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return transactions, nil
}

// SumAmountsByUser totals transaction amounts per type for one user.
func (r *PgxTransactionRepository) SumAmountsByUser(ctx context.Context, userID string) (map[domain.TransactionType]decimal.Decimal, error) {
	query := `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		GROUP BY type;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	sums := map[domain.TransactionType]decimal.Decimal{}
	for rows.Next() {
		var txnType string
		var total decimal.Decimal
		if err := rows.Scan(&txnType, &total); err != nil {
			return nil, fmt.Errorf("failed to scan transaction sum row: %w", err)
		}
		sums[domain.TransactionType(txnType)] = total
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction sum rows: %w", rows.Err())
	}
	return sums, nil
}

// SaveTransactionInTx appends an audit entry within a transaction.
func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, user_id, type, amount, detail, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.UserID,
		string(txn.Type),
		txn.Amount,
		txn.Detail,
		txn.CreatedAt,
		txn.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}
