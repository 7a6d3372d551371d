package repositories

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
)

// JobLockRepository guards background jobs against overlapping executions.
type JobLockRepository interface {
	// AcquireLock takes the named lease until lockedUntil. Returns
	// apperrors.ErrConflict when another holder's lease is still live.
	AcquireLock(ctx context.Context, jobName string, holderID string, lockedUntil time.Time) error

	// ReleaseLock releases the lease if this holder still owns it.
	ReleaseLock(ctx context.Context, jobName string, holderID string) error
}

// AccrualRunRepository persists per-cycle execution summaries.
type AccrualRunRepository interface {
	// SaveRun inserts the run row at cycle start.
	SaveRun(ctx context.Context, run domain.AccrualRun) error

	// FinishRun records the final counters and finish time.
	FinishRun(ctx context.Context, run domain.AccrualRun) error

	// FindLatestRun retrieves the most recent run summary, if any.
	FindLatestRun(ctx context.Context) (*domain.AccrualRun, error)
}
