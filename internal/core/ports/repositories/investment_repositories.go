package repositories

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InvestmentReader defines read operations for investment records
type InvestmentReader interface {
	// FindInvestmentByID retrieves a single investment record.
	FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error)

	// ListInvestmentsByUser retrieves a user's investments, newest first.
	ListInvestmentsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Investment, error)

	// ListActiveInvestments retrieves every ACTIVE record for the accrual job.
	ListActiveInvestments(ctx context.Context) ([]domain.Investment, error)

	// ListPendingInvestments retrieves PENDING records for the admin surface.
	ListPendingInvestments(ctx context.Context, limit int, offset int) ([]domain.Investment, error)

	// SummarizeInvestmentsByUser aggregates a user's investments per plan.
	// Cancelled records are excluded.
	SummarizeInvestmentsByUser(ctx context.Context, userID string) ([]domain.InvestmentSummary, error)
}

// InvestmentWriter defines write operations for investment records
type InvestmentWriter interface {
	// SaveInvestmentInTx inserts a new PENDING record within a transaction.
	SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error

	// ActivateInvestment flips PENDING to ACTIVE and sets the start date.
	// Returns apperrors.ErrConflict when the record is not PENDING.
	ActivateInvestment(ctx context.Context, investmentID string, startDate time.Time, actorID string) error

	// CancelInvestmentInTx flips PENDING to CANCELLED within a transaction.
	// Returns apperrors.ErrConflict when the record is not PENDING.
	CancelInvestmentInTx(ctx context.Context, tx pgx.Tx, investmentID string, actorID string, now time.Time) error

	// ApplyAccrualInTx records one accrual payment on an ACTIVE record:
	// bumps interest_paid and stamps last_accrued_at.
	ApplyAccrualInTx(ctx context.Context, tx pgx.Tx, investmentID string, interestDelta decimal.Decimal, accruedAt time.Time) error

	// CloseInvestmentInTx transitions a record to ENDED within a transaction.
	CloseInvestmentInTx(ctx context.Context, tx pgx.Tx, investmentID string, finalInterest decimal.Decimal, closedAt time.Time) error
}

// InvestmentRepositoryFacade combines all investment repository interfaces.
type InvestmentRepositoryFacade interface {
	InvestmentReader
	InvestmentWriter
}

// InvestmentRepositoryWithTx extends the facade with transaction capabilities
type InvestmentRepositoryWithTx interface {
	InvestmentRepositoryFacade
	TransactionManager
}
