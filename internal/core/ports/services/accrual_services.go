package services

import (
	"context"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
)

// TransactionSvcFacade exposes the audit trail to the API surface.
type TransactionSvcFacade interface {
	// ListTransactions retrieves a user's transactions, newest first.
	ListTransactions(ctx context.Context, userID string, limit int, offset int) ([]domain.Transaction, error)
}

// AccrualSvcFacade is the scheduled batch entry point.
type AccrualSvcFacade interface {
	// RunAccrualCycle walks every ACTIVE investment once: pays one day of
	// interest, or the remaining term interest at maturity, and closes
	// matured or broken records. Per-record failures are isolated; the run
	// aborts only on system-level failures. At most one cycle executes at a
	// time, enforced by a job lease.
	RunAccrualCycle(ctx context.Context) (*domain.AccrualRun, error)

	// LatestRun retrieves the most recent run summary, if any.
	LatestRun(ctx context.Context) (*domain.AccrualRun, error)
}
