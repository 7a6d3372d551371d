package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/google/uuid"
)

type depositService struct {
	depositRepo portsrepo.DepositRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryWithTx
	txnRepo     portsrepo.TransactionRepositoryFacade
}

// NewDepositService creates a new deposit request service.
func NewDepositService(
	depositRepo portsrepo.DepositRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryWithTx,
	txnRepo portsrepo.TransactionRepositoryFacade,
) portssvc.DepositSvcFacade {
	return &depositService{
		depositRepo: depositRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
	}
}

// CreateDeposit records a new PENDING deposit request. No ledger effect
// until an admin approves it.
func (s *depositService) CreateDeposit(ctx context.Context, userID string, req dto.CreateDepositRequest) (*domain.Deposit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, apperrors.NewAppError(400, "deposit amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	deposit := domain.Deposit{
		DepositID: uuid.NewString(),
		UserID:    userID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Status:    domain.DepositPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.depositRepo.SaveDeposit(ctx, deposit); err != nil {
		logger.Error("Failed to save deposit", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Deposit requested", slog.String("deposit_id", deposit.DepositID), slog.String("amount", deposit.Amount.String()))
	return &deposit, nil
}

// ListDeposits retrieves a user's deposit requests, newest first.
func (s *depositService) ListDeposits(ctx context.Context, userID string, limit int, offset int) ([]domain.Deposit, error) {
	return s.depositRepo.ListDepositsByUser(ctx, userID, limit, offset)
}

// ListPendingDeposits retrieves unresolved deposits for the admin surface.
func (s *depositService) ListPendingDeposits(ctx context.Context, limit int, offset int) ([]domain.Deposit, error) {
	return s.depositRepo.ListPendingDeposits(ctx, limit, offset)
}

// ApproveDeposit credits the ledger and resolves the request. The status
// flip, balance credit and audit entry commit atomically; approving an
// already-resolved deposit returns ErrConflict with no ledger effect.
func (s *depositService) ApproveDeposit(ctx context.Context, depositID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	deposit, err := s.depositRepo.FindDepositByID(ctx, depositID)
	if err != nil {
		return err
	}

	now := time.Now()
	tx, err := s.depositRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.depositRepo.Rollback(ctx, tx)

	if err := s.depositRepo.ResolveDepositInTx(ctx, tx, depositID, domain.DepositApproved, actorID, now); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to resolve deposit", slog.String("deposit_id", depositID), slog.String("error", err.Error()))
		}
		return err
	}

	account, err := s.accountRepo.FindAccountByUserIDForUpdate(ctx, tx, deposit.UserID)
	if err != nil {
		return err
	}

	change := portsrepo.BalanceChange{BalanceDelta: deposit.Amount}
	if err := s.accountRepo.ApplyBalanceChangeInTx(ctx, tx, account.AccountID, change, actorID, now); err != nil {
		return err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        deposit.UserID,
		Type:          domain.TxnDeposit,
		Amount:        deposit.Amount,
		Detail:        fmt.Sprintf("Deposit %s approved (%s)", deposit.DepositID, deposit.Method),
		CreatedAt:     now,
		CreatedBy:     actorID,
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}

	if err := s.depositRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit deposit approval: %w", err)
	}

	logger.Info("Deposit approved",
		slog.String("deposit_id", depositID),
		slog.String("user_id", deposit.UserID),
		slog.String("amount", deposit.Amount.String()),
		slog.String("actor", actorID),
	)
	return nil
}

// RejectDeposit resolves the request with no ledger effect.
func (s *depositService) RejectDeposit(ctx context.Context, depositID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	tx, err := s.depositRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.depositRepo.Rollback(ctx, tx)

	if err := s.depositRepo.ResolveDepositInTx(ctx, tx, depositID, domain.DepositRejected, actorID, now); err != nil {
		return err
	}

	if err := s.depositRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit deposit rejection: %w", err)
	}

	logger.Info("Deposit rejected", slog.String("deposit_id", depositID), slog.String("actor", actorID))
	return nil
}
