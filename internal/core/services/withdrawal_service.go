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

type withdrawalService struct {
	withdrawalRepo portsrepo.WithdrawalRepositoryWithTx
	accountRepo    portsrepo.AccountRepositoryWithTx
	txnRepo        portsrepo.TransactionRepositoryFacade
}

// NewWithdrawalService creates a new withdrawal request service.
func NewWithdrawalService(
	withdrawalRepo portsrepo.WithdrawalRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryWithTx,
	txnRepo portsrepo.TransactionRepositoryFacade,
) portssvc.WithdrawalSvcFacade {
	return &withdrawalService{
		withdrawalRepo: withdrawalRepo,
		accountRepo:    accountRepo,
		txnRepo:        txnRepo,
	}
}

// CreateWithdrawal debits the ledger and records a PENDING withdrawal.
// The debit reserves the funds so a pending request cannot be double-spent;
// insufficient balance rolls everything back.
func (s *withdrawalService) CreateWithdrawal(ctx context.Context, userID string, req dto.CreateWithdrawalRequest) (*domain.Withdrawal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, apperrors.NewAppError(400, "withdrawal amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	withdrawal := domain.Withdrawal{
		WithdrawalID: uuid.NewString(),
		UserID:       userID,
		Amount:       req.Amount,
		Destination:  req.Destination,
		Status:       domain.WithdrawalPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	tx, err := s.withdrawalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.withdrawalRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	change := portsrepo.BalanceChange{BalanceDelta: req.Amount.Neg()}
	if err := s.accountRepo.ApplyBalanceChangeInTx(ctx, tx, account.AccountID, change, userID, now); err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return nil, err
		}
		logger.Error("Failed to reserve withdrawal funds", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.withdrawalRepo.SaveWithdrawalInTx(ctx, tx, withdrawal); err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Type:          domain.TxnWithdrawal,
		Amount:        req.Amount,
		Detail:        fmt.Sprintf("Withdrawal %s requested", withdrawal.WithdrawalID),
		CreatedAt:     now,
		CreatedBy:     userID,
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal request: %w", err)
	}

	logger.Info("Withdrawal requested", slog.String("withdrawal_id", withdrawal.WithdrawalID), slog.String("amount", req.Amount.String()))
	return &withdrawal, nil
}

// ListWithdrawals retrieves a user's withdrawal requests, newest first.
func (s *withdrawalService) ListWithdrawals(ctx context.Context, userID string, limit int, offset int) ([]domain.Withdrawal, error) {
	return s.withdrawalRepo.ListWithdrawalsByUser(ctx, userID, limit, offset)
}

// ListPendingWithdrawals retrieves unresolved withdrawals for the admin surface.
func (s *withdrawalService) ListPendingWithdrawals(ctx context.Context, limit int, offset int) ([]domain.Withdrawal, error) {
	return s.withdrawalRepo.ListPendingWithdrawals(ctx, limit, offset)
}

// ApproveWithdrawal resolves the request. The funds were already debited at
// request time; the payout itself happens off-system.
func (s *withdrawalService) ApproveWithdrawal(ctx context.Context, withdrawalID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	tx, err := s.withdrawalRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.withdrawalRepo.Rollback(ctx, tx)

	if err := s.withdrawalRepo.ResolveWithdrawalInTx(ctx, tx, withdrawalID, domain.WithdrawalApproved, actorID, now); err != nil {
		return err
	}

	if err := s.withdrawalRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit withdrawal approval: %w", err)
	}

	logger.Info("Withdrawal approved", slog.String("withdrawal_id", withdrawalID), slog.String("actor", actorID))
	return nil
}

// RejectWithdrawal refunds the reserved amount and resolves the request.
func (s *withdrawalService) RejectWithdrawal(ctx context.Context, withdrawalID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	withdrawal, err := s.withdrawalRepo.FindWithdrawalByID(ctx, withdrawalID)
	if err != nil {
		return err
	}

	now := time.Now()
	tx, err := s.withdrawalRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.withdrawalRepo.Rollback(ctx, tx)

	if err := s.withdrawalRepo.ResolveWithdrawalInTx(ctx, tx, withdrawalID, domain.WithdrawalRejected, actorID, now); err != nil {
		return err
	}

	account, err := s.accountRepo.FindAccountByUserIDForUpdate(ctx, tx, withdrawal.UserID)
	if err != nil {
		return err
	}

	change := portsrepo.BalanceChange{BalanceDelta: withdrawal.Amount}
	if err := s.accountRepo.ApplyBalanceChangeInTx(ctx, tx, account.AccountID, change, actorID, now); err != nil {
		return err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        withdrawal.UserID,
		Type:          domain.TxnDeposit,
		Amount:        withdrawal.Amount,
		Detail:        fmt.Sprintf("Withdrawal %s rejected, funds returned", withdrawal.WithdrawalID),
		CreatedAt:     now,
		CreatedBy:     actorID,
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}

	if err := s.withdrawalRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit withdrawal rejection: %w", err)
	}

	logger.Info("Withdrawal rejected", slog.String("withdrawal_id", withdrawalID), slog.String("actor", actorID))
	return nil
}
