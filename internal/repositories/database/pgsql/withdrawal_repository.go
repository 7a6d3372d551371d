package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	"github.com/cryptonest/cryptonest_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxWithdrawalRepository struct {
	BaseRepository
}

// newPgxWithdrawalRepository creates a new repository for withdrawal requests.
func newPgxWithdrawalRepository(pool *pgxpool.Pool) portsrepo.WithdrawalRepositoryWithTx {
	return &PgxWithdrawalRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.WithdrawalRepositoryWithTx = (*PgxWithdrawalRepository)(nil)

func toDomainWithdrawal(m models.Withdrawal) domain.Withdrawal {
	w := domain.Withdrawal{
		WithdrawalID: m.WithdrawalID,
		UserID:       m.UserID,
		Amount:       m.Amount,
		Destination:  m.Destination,
		Status:       domain.WithdrawalStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.ResolvedAt.Valid {
		t := m.ResolvedAt.Time
		w.ResolvedAt = &t
	}
	if m.ResolvedBy.Valid {
		w.ResolvedBy = m.ResolvedBy.String
	}
	return w
}

const withdrawalColumns = `withdrawal_id, user_id, amount, destination, status, resolved_at, resolved_by, created_at, created_by, last_updated_at, last_updated_by`

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var m models.Withdrawal
	err := row.Scan(
		&m.WithdrawalID,
		&m.UserID,
		&m.Amount,
		&m.Destination,
		&m.Status,
		&m.ResolvedAt,
		&m.ResolvedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	w := toDomainWithdrawal(m)
	return &w, nil
}

func (r *PgxWithdrawalRepository) queryWithdrawals(ctx context.Context, query string, args ...any) ([]domain.Withdrawal, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	withdrawals := []domain.Withdrawal{}
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal row: %w", err)
		}
		withdrawals = append(withdrawals, *w)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating withdrawal rows: %w", rows.Err())
	}
	return withdrawals, nil
}

// FindWithdrawalByID retrieves a single withdrawal request.
func (r *PgxWithdrawalRepository) FindWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE withdrawal_id = $1;`
	w, err := scanWithdrawal(r.Pool.QueryRow(ctx, query, withdrawalID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find withdrawal %s: %w", withdrawalID, err)
	}
	return w, nil
}

// ListWithdrawalsByUser retrieves a user's withdrawals, newest first.
func (r *PgxWithdrawalRepository) ListWithdrawalsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	return r.queryWithdrawals(ctx, query, userID, limit, offset)
}

// ListPendingWithdrawals retrieves PENDING withdrawals for the admin surface.
func (r *PgxWithdrawalRepository) ListPendingWithdrawals(ctx context.Context, limit int, offset int) ([]domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawals
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3;
	`
	return r.queryWithdrawals(ctx, query, string(domain.WithdrawalPending), limit, offset)
}

// SaveWithdrawalInTx inserts a new PENDING withdrawal in the same
// transaction as the reserving balance debit.
func (r *PgxWithdrawalRepository) SaveWithdrawalInTx(ctx context.Context, tx pgx.Tx, withdrawal domain.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (withdrawal_id, user_id, amount, destination, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		withdrawal.WithdrawalID,
		withdrawal.UserID,
		withdrawal.Amount,
		withdrawal.Destination,
		string(withdrawal.Status),
		withdrawal.CreatedAt,
		withdrawal.CreatedBy,
		withdrawal.LastUpdatedAt,
		withdrawal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save withdrawal %s: %w", withdrawal.WithdrawalID, err)
	}
	return nil
}

// ResolveWithdrawalInTx flips PENDING to a terminal status within a
// transaction. Rejection refunds happen in the same transaction at the
// service layer.
func (r *PgxWithdrawalRepository) ResolveWithdrawalInTx(ctx context.Context, tx pgx.Tx, withdrawalID string, status domain.WithdrawalStatus, actorID string, now time.Time) error {
	query := `
		UPDATE withdrawals
		SET status = $2, resolved_at = $3, resolved_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE withdrawal_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query,
		withdrawalID,
		string(status),
		now,
		actorID,
		string(domain.WithdrawalPending),
	)
	if err != nil {
		return fmt.Errorf("failed to resolve withdrawal %s: %w", withdrawalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindWithdrawalByID(ctx, withdrawalID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check withdrawal %s after update: %w", withdrawalID, findErr)
		}
		return fmt.Errorf("%w: withdrawal %s is already resolved", apperrors.ErrConflict, withdrawalID)
	}
	return nil
}
