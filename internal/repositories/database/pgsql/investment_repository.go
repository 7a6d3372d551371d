package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	"github.com/cryptonest/cryptonest_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxInvestmentRepository struct {
	BaseRepository
}

// newPgxInvestmentRepository creates a new repository for investment records.
func newPgxInvestmentRepository(pool *pgxpool.Pool) portsrepo.InvestmentRepositoryWithTx {
	return &PgxInvestmentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.InvestmentRepositoryWithTx = (*PgxInvestmentRepository)(nil)

func toDomainInvestment(m models.Investment) domain.Investment {
	inv := domain.Investment{
		InvestmentID: m.InvestmentID,
		UserID:       m.UserID,
		PlanKey:      domain.PlanKey(m.PlanKey),
		Principal:    m.Principal,
		Status:       domain.InvestmentStatus(m.Status),
		InterestPaid: m.InterestPaid,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.StartDate.Valid {
		t := m.StartDate.Time
		inv.StartDate = &t
	}
	if m.LastAccruedAt.Valid {
		t := m.LastAccruedAt.Time
		inv.LastAccruedAt = &t
	}
	if m.ClosedAt.Valid {
		t := m.ClosedAt.Time
		inv.ClosedAt = &t
	}
	return inv
}

const investmentColumns = `investment_id, user_id, plan_key, principal, status, start_date, interest_paid, last_accrued_at, closed_at, created_at, created_by, last_updated_at, last_updated_by`

func scanInvestment(row pgx.Row) (*domain.Investment, error) {
	var m models.Investment
	err := row.Scan(
		&m.InvestmentID,
		&m.UserID,
		&m.PlanKey,
		&m.Principal,
		&m.Status,
		&m.StartDate,
		&m.InterestPaid,
		&m.LastAccruedAt,
		&m.ClosedAt,
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
	inv := toDomainInvestment(m)
	return &inv, nil
}

func (r *PgxInvestmentRepository) queryInvestments(ctx context.Context, query string, args ...any) ([]domain.Investment, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	investments := []domain.Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment row: %w", err)
		}
		investments = append(investments, *inv)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating investment rows: %w", rows.Err())
	}
	return investments, nil
}

// FindInvestmentByID retrieves a single investment record.
func (r *PgxInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1;`
	inv, err := scanInvestment(r.Pool.QueryRow(ctx, query, investmentID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find investment %s: %w", investmentID, err)
	}
	return inv, nil
}

// ListInvestmentsByUser retrieves a user's investments, newest first.
func (r *PgxInvestmentRepository) ListInvestmentsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Investment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	return r.queryInvestments(ctx, query, userID, limit, offset)
}

// ListActiveInvestments retrieves every ACTIVE record for the accrual job.
func (r *PgxInvestmentRepository) ListActiveInvestments(ctx context.Context) ([]domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE status = $1
		ORDER BY created_at;
	`
	return r.queryInvestments(ctx, query, string(domain.InvestmentActive))
}

// ListPendingInvestments retrieves PENDING records for the admin surface.
func (r *PgxInvestmentRepository) ListPendingInvestments(ctx context.Context, limit int, offset int) ([]domain.Investment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3;
	`
	return r.queryInvestments(ctx, query, string(domain.InvestmentPending), limit, offset)
}

// SummarizeInvestmentsByUser aggregates a user's investments per plan.
// Cancelled records never held principal to completion, so they are excluded.
func (r *PgxInvestmentRepository) SummarizeInvestmentsByUser(ctx context.Context, userID string) ([]domain.InvestmentSummary, error) {
	query := `
		SELECT plan_key,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2),
		       COALESCE(SUM(principal), 0),
		       COALESCE(SUM(interest_paid), 0)
		FROM investments
		WHERE user_id = $1 AND status <> $3
		GROUP BY plan_key
		ORDER BY plan_key;
	`
	rows, err := r.Pool.Query(ctx, query, userID, string(domain.InvestmentActive), string(domain.InvestmentCancelled))
	if err != nil {
		return nil, fmt.Errorf("failed to query investment summary for user %s: %w", userID, err)
	}
	defer rows.Close()

	summaries := []domain.InvestmentSummary{}
	for rows.Next() {
		var s domain.InvestmentSummary
		var planKey string
		if err := rows.Scan(&planKey, &s.Count, &s.ActiveCount, &s.TotalPrincipal, &s.InterestPaid); err != nil {
			return nil, fmt.Errorf("failed to scan investment summary row: %w", err)
		}
		s.PlanKey = domain.PlanKey(planKey)
		summaries = append(summaries, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating investment summary rows: %w", rows.Err())
	}
	return summaries, nil
}

// SaveInvestmentInTx inserts a new PENDING record within a transaction.
func (r *PgxInvestmentRepository) SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	query := `
		INSERT INTO investments (` + investmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	var startDate, lastAccruedAt, closedAt sql.NullTime
	if investment.StartDate != nil {
		startDate = sql.NullTime{Time: *investment.StartDate, Valid: true}
	}
	if investment.LastAccruedAt != nil {
		lastAccruedAt = sql.NullTime{Time: *investment.LastAccruedAt, Valid: true}
	}
	if investment.ClosedAt != nil {
		closedAt = sql.NullTime{Time: *investment.ClosedAt, Valid: true}
	}

	_, err := tx.Exec(ctx, query,
		investment.InvestmentID,
		investment.UserID,
		string(investment.PlanKey),
		investment.Principal,
		string(investment.Status),
		startDate,
		investment.InterestPaid,
		lastAccruedAt,
		closedAt,
		investment.CreatedAt,
		investment.CreatedBy,
		investment.LastUpdatedAt,
		investment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save investment %s: %w", investment.InvestmentID, err)
	}
	return nil
}

// ActivateInvestment flips PENDING to ACTIVE and stamps the start date.
// The status guard in the WHERE clause makes double approval a conflict.
func (r *PgxInvestmentRepository) ActivateInvestment(ctx context.Context, investmentID string, startDate time.Time, actorID string) error {
	query := `
		UPDATE investments
		SET status = $2, start_date = $3, last_updated_at = $3, last_updated_by = $4
		WHERE investment_id = $1 AND status = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		investmentID,
		string(domain.InvestmentActive),
		startDate,
		actorID,
		string(domain.InvestmentPending),
	)
	if err != nil {
		return fmt.Errorf("failed to activate investment %s: %w", investmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.conflictOrNotFound(ctx, investmentID)
	}
	return nil
}

// CancelInvestmentInTx flips PENDING to CANCELLED within a transaction.
func (r *PgxInvestmentRepository) CancelInvestmentInTx(ctx context.Context, tx pgx.Tx, investmentID string, actorID string, now time.Time) error {
	query := `
		UPDATE investments
		SET status = $2, closed_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE investment_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query,
		investmentID,
		string(domain.InvestmentCancelled),
		now,
		actorID,
		string(domain.InvestmentPending),
	)
	if err != nil {
		return fmt.Errorf("failed to cancel investment %s: %w", investmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.conflictOrNotFound(ctx, investmentID)
	}
	return nil
}

// ApplyAccrualInTx records one accrual payment on an ACTIVE record.
func (r *PgxInvestmentRepository) ApplyAccrualInTx(ctx context.Context, tx pgx.Tx, investmentID string, interestDelta decimal.Decimal, accruedAt time.Time) error {
	query := `
		UPDATE investments
		SET interest_paid = interest_paid + $2, last_accrued_at = $3, last_updated_at = $3
		WHERE investment_id = $1 AND status = $4;
	`
	cmdTag, err := tx.Exec(ctx, query,
		investmentID,
		interestDelta,
		accruedAt,
		string(domain.InvestmentActive),
	)
	if err != nil {
		return fmt.Errorf("failed to apply accrual to investment %s: %w", investmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: investment %s is not active", apperrors.ErrConflict, investmentID)
	}
	return nil
}

// CloseInvestmentInTx transitions an ACTIVE record to ENDED.
// finalInterest may be zero for defensive closures.
func (r *PgxInvestmentRepository) CloseInvestmentInTx(ctx context.Context, tx pgx.Tx, investmentID string, finalInterest decimal.Decimal, closedAt time.Time) error {
	query := `
		UPDATE investments
		SET status = $2, interest_paid = interest_paid + $3, closed_at = $4,
		    last_accrued_at = $4, last_updated_at = $4
		WHERE investment_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query,
		investmentID,
		string(domain.InvestmentEnded),
		finalInterest,
		closedAt,
		string(domain.InvestmentActive),
	)
	if err != nil {
		return fmt.Errorf("failed to close investment %s: %w", investmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: investment %s is not active", apperrors.ErrConflict, investmentID)
	}
	return nil
}

// conflictOrNotFound distinguishes a missing record from an already-resolved one.
func (r *PgxInvestmentRepository) conflictOrNotFound(ctx context.Context, investmentID string) error {
	if _, err := r.FindInvestmentByID(ctx, investmentID); errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to check investment %s after update: %w", investmentID, err)
	}
	return fmt.Errorf("%w: investment %s is already resolved", apperrors.ErrConflict, investmentID)
}
