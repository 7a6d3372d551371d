package repositories

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DepositReader defines read operations for deposit requests
type DepositReader interface {
	// FindDepositByID retrieves a single deposit request.
	FindDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error)

	// ListDepositsByUser retrieves a user's deposits, newest first.
	ListDepositsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Deposit, error)

	// ListPendingDeposits retrieves PENDING deposits for the admin surface.
	ListPendingDeposits(ctx context.Context, limit int, offset int) ([]domain.Deposit, error)
}

// DepositWriter defines write operations for deposit requests
type DepositWriter interface {
	// SaveDeposit persists a new PENDING deposit request.
	SaveDeposit(ctx context.Context, deposit domain.Deposit) error

	// ResolveDepositInTx flips PENDING to the given terminal status within a
	// transaction. Returns apperrors.ErrConflict when the deposit is not
	// PENDING, which makes double approval a no-op error.
	ResolveDepositInTx(ctx context.Context, tx pgx.Tx, depositID string, status domain.DepositStatus, actorID string, now time.Time) error
}

// DepositRepositoryFacade combines all deposit repository interfaces.
type DepositRepositoryFacade interface {
	DepositReader
	DepositWriter
}

// DepositRepositoryWithTx extends the facade with transaction capabilities
type DepositRepositoryWithTx interface {
	DepositRepositoryFacade
	TransactionManager
}

// WithdrawalReader defines read operations for withdrawal requests
type WithdrawalReader interface {
	// FindWithdrawalByID retrieves a single withdrawal request.
	FindWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error)

	// ListWithdrawalsByUser retrieves a user's withdrawals, newest first.
	ListWithdrawalsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Withdrawal, error)

	// ListPendingWithdrawals retrieves PENDING withdrawals for the admin surface.
	ListPendingWithdrawals(ctx context.Context, limit int, offset int) ([]domain.Withdrawal, error)
}

// WithdrawalWriter defines write operations for withdrawal requests
type WithdrawalWriter interface {
	// SaveWithdrawalInTx inserts a new PENDING withdrawal within a
	// transaction, alongside the reserving debit.
	SaveWithdrawalInTx(ctx context.Context, tx pgx.Tx, withdrawal domain.Withdrawal) error

	// ResolveWithdrawalInTx flips PENDING to the given terminal status within
	// a transaction. Returns apperrors.ErrConflict when not PENDING.
	ResolveWithdrawalInTx(ctx context.Context, tx pgx.Tx, withdrawalID string, status domain.WithdrawalStatus, actorID string, now time.Time) error
}

// WithdrawalRepositoryFacade combines all withdrawal repository interfaces.
type WithdrawalRepositoryFacade interface {
	WithdrawalReader
	WithdrawalWriter
}

// WithdrawalRepositoryWithTx extends the facade with transaction capabilities
type WithdrawalRepositoryWithTx interface {
	WithdrawalRepositoryFacade
	TransactionManager
}
