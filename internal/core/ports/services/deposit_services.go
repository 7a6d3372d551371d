package services

import (
	"context"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
)

// DepositSvcFacade covers the deposit request lifecycle.
type DepositSvcFacade interface {
	// CreateDeposit records a new PENDING deposit request.
	CreateDeposit(ctx context.Context, userID string, req dto.CreateDepositRequest) (*domain.Deposit, error)

	// ListDeposits retrieves a user's deposit requests, newest first.
	ListDeposits(ctx context.Context, userID string, limit int, offset int) ([]domain.Deposit, error)

	// ListPendingDeposits retrieves unresolved deposits for the admin surface.
	ListPendingDeposits(ctx context.Context, limit int, offset int) ([]domain.Deposit, error)

	// ApproveDeposit credits the ledger and resolves the request.
	// A second call on the same deposit returns apperrors.ErrConflict.
	ApproveDeposit(ctx context.Context, depositID string, actorID string) error

	// RejectDeposit resolves the request with no ledger effect.
	RejectDeposit(ctx context.Context, depositID string, actorID string) error
}

// WithdrawalSvcFacade covers the withdrawal request lifecycle.
type WithdrawalSvcFacade interface {
	// CreateWithdrawal debits the ledger (reserving funds) and records a
	// PENDING withdrawal request.
	CreateWithdrawal(ctx context.Context, userID string, req dto.CreateWithdrawalRequest) (*domain.Withdrawal, error)

	// ListWithdrawals retrieves a user's withdrawal requests, newest first.
	ListWithdrawals(ctx context.Context, userID string, limit int, offset int) ([]domain.Withdrawal, error)

	// ListPendingWithdrawals retrieves unresolved withdrawals for the admin surface.
	ListPendingWithdrawals(ctx context.Context, limit int, offset int) ([]domain.Withdrawal, error)

	// ApproveWithdrawal resolves the request; the payout itself happens
	// off-system. Second call returns apperrors.ErrConflict.
	ApproveWithdrawal(ctx context.Context, withdrawalID string, actorID string) error

	// RejectWithdrawal refunds the reserved amount and resolves the request.
	RejectWithdrawal(ctx context.Context, withdrawalID string, actorID string) error
}
