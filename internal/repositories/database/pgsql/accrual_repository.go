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

// PgxJobLockRepository implements the background job lease on a single
// job_locks row per job name.
type PgxJobLockRepository struct {
	BaseRepository
}

func newPgxJobLockRepository(pool *pgxpool.Pool) portsrepo.JobLockRepository {
	return &PgxJobLockRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.JobLockRepository = (*PgxJobLockRepository)(nil)

// AcquireLock takes the named lease until lockedUntil. The upsert only
// steals the row when the previous holder's lease has expired, so at most
// one holder is live at a time.
func (r *PgxJobLockRepository) AcquireLock(ctx context.Context, jobName string, holderID string, lockedUntil time.Time) error {
	query := `
		INSERT INTO job_locks (job_name, holder_id, locked_until)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
		SET holder_id = $2, locked_until = $3
		WHERE job_locks.locked_until < NOW();
	`
	cmdTag, err := r.Pool.Exec(ctx, query, jobName, holderID, lockedUntil)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", jobName, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lock %s is held", apperrors.ErrConflict, jobName)
	}
	return nil
}

// ReleaseLock expires the lease if this holder still owns it. A lost or
// stolen lease is not an error; the next acquire sorts it out.
func (r *PgxJobLockRepository) ReleaseLock(ctx context.Context, jobName string, holderID string) error {
	query := `
		UPDATE job_locks
		SET locked_until = NOW()
		WHERE job_name = $1 AND holder_id = $2;
	`
	if _, err := r.Pool.Exec(ctx, query, jobName, holderID); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", jobName, err)
	}
	return nil
}

// PgxAccrualRunRepository persists per-cycle execution summaries.
type PgxAccrualRunRepository struct {
	BaseRepository
}

func newPgxAccrualRunRepository(pool *pgxpool.Pool) portsrepo.AccrualRunRepository {
	return &PgxAccrualRunRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccrualRunRepository = (*PgxAccrualRunRepository)(nil)

// SaveRun inserts the run row at cycle start.
func (r *PgxAccrualRunRepository) SaveRun(ctx context.Context, run domain.AccrualRun) error {
	query := `
		INSERT INTO accrual_runs (run_id, started_at, processed, credited, closed, failed, total_distributed)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		run.RunID,
		run.StartedAt,
		run.Processed,
		run.Credited,
		run.Closed,
		run.Failed,
		run.TotalDistributed,
	)
	if err != nil {
		return fmt.Errorf("failed to save accrual run %s: %w", run.RunID, err)
	}
	return nil
}

// FinishRun records the final counters and finish time.
func (r *PgxAccrualRunRepository) FinishRun(ctx context.Context, run domain.AccrualRun) error {
	query := `
		UPDATE accrual_runs
		SET finished_at = $2, processed = $3, credited = $4, closed = $5, failed = $6, total_distributed = $7
		WHERE run_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		run.RunID,
		run.FinishedAt,
		run.Processed,
		run.Credited,
		run.Closed,
		run.Failed,
		run.TotalDistributed,
	)
	if err != nil {
		return fmt.Errorf("failed to finish accrual run %s: %w", run.RunID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: accrual run %s", apperrors.ErrNotFound, run.RunID)
	}
	return nil
}

// FindLatestRun retrieves the most recent run summary, if any.
func (r *PgxAccrualRunRepository) FindLatestRun(ctx context.Context) (*domain.AccrualRun, error) {
	query := `
		SELECT run_id, started_at, finished_at, processed, credited, closed, failed, total_distributed
		FROM accrual_runs
		ORDER BY started_at DESC
		LIMIT 1;
	`
	var m models.AccrualRun
	err := r.Pool.QueryRow(ctx, query).Scan(
		&m.RunID,
		&m.StartedAt,
		&m.FinishedAt,
		&m.Processed,
		&m.Credited,
		&m.Closed,
		&m.Failed,
		&m.TotalDistributed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest accrual run: %w", err)
	}

	run := domain.AccrualRun{
		RunID:            m.RunID,
		StartedAt:        m.StartedAt,
		Processed:        m.Processed,
		Credited:         m.Credited,
		Closed:           m.Closed,
		Failed:           m.Failed,
		TotalDistributed: m.TotalDistributed,
	}
	if m.FinishedAt.Valid {
		t := m.FinishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
