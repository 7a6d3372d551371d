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

type PgxDepositRepository struct {
	BaseRepository
}

// newPgxDepositRepository creates a new repository for deposit requests.
func newPgxDepositRepository(pool *pgxpool.Pool) portsrepo.DepositRepositoryWithTx {
	return &PgxDepositRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.DepositRepositoryWithTx = (*PgxDepositRepository)(nil)

func toDomainDeposit(m models.Deposit) domain.Deposit {
	d := domain.Deposit{
		DepositID: m.DepositID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		Method:    m.Method,
		Reference: m.Reference,
		Status:    domain.DepositStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.ResolvedAt.Valid {
		t := m.ResolvedAt.Time
		d.ResolvedAt = &t
	}
	if m.ResolvedBy.Valid {
		d.ResolvedBy = m.ResolvedBy.String
	}
	return d
}

const depositColumns = `deposit_id, user_id, amount, method, reference, status, resolved_at, resolved_by, created_at, created_by, last_updated_at, last_updated_by`

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	var m models.Deposit
	err := row.Scan(
		&m.DepositID,
		&m.UserID,
		&m.Amount,
		&m.Method,
		&m.Reference,
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
	d := toDomainDeposit(m)
	return &d, nil
}

func (r *PgxDepositRepository) queryDeposits(ctx context.Context, query string, args ...any) ([]domain.Deposit, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	deposits := []domain.Deposit{}
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit row: %w", err)
		}
		deposits = append(deposits, *d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating deposit rows: %w", rows.Err())
	}
	return deposits, nil
}

// FindDepositByID retrieves a single deposit request.
func (r *PgxDepositRepository) FindDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE deposit_id = $1;`
	d, err := scanDeposit(r.Pool.QueryRow(ctx, query, depositID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find deposit %s: %w", depositID, err)
	}
	return d, nil
}

// ListDepositsByUser retrieves a user's deposits, newest first.
func (r *PgxDepositRepository) ListDepositsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Deposit, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + depositColumns + `
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	return r.queryDeposits(ctx, query, userID, limit, offset)
}

// ListPendingDeposits retrieves PENDING deposits for the admin surface.
func (r *PgxDepositRepository) ListPendingDeposits(ctx context.Context, limit int, offset int) ([]domain.Deposit, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + depositColumns + `
		FROM deposits
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3;
	`
	return r.queryDeposits(ctx, query, string(domain.DepositPending), limit, offset)
}

// SaveDeposit persists a new PENDING deposit request.
func (r *PgxDepositRepository) SaveDeposit(ctx context.Context, deposit domain.Deposit) error {
	query := `
		INSERT INTO deposits (deposit_id, user_id, amount, method, reference, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		deposit.DepositID,
		deposit.UserID,
		deposit.Amount,
		deposit.Method,
		deposit.Reference,
		string(deposit.Status),
		deposit.CreatedAt,
		deposit.CreatedBy,
		deposit.LastUpdatedAt,
		deposit.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save deposit %s: %w", deposit.DepositID, err)
	}
	return nil
}

// ResolveDepositInTx flips PENDING to a terminal status within a transaction.
// The status guard makes a second resolution attempt a conflict, not a
// second credit.
func (r *PgxDepositRepository) ResolveDepositInTx(ctx context.Context, tx pgx.Tx, depositID string, status domain.DepositStatus, actorID string, now time.Time) error {
	query := `
		UPDATE deposits
		SET status = $2, resolved_at = $3, resolved_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE deposit_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query,
		depositID,
		string(status),
		now,
		actorID,
		string(domain.DepositPending),
	)
	if err != nil {
		return fmt.Errorf("failed to resolve deposit %s: %w", depositID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindDepositByID(ctx, depositID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check deposit %s after update: %w", depositID, findErr)
		}
		return fmt.Errorf("%w: deposit %s is already resolved", apperrors.ErrConflict, depositID)
	}
	return nil
}
