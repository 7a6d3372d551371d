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

type investmentService struct {
	investmentRepo portsrepo.InvestmentRepositoryWithTx
	accountRepo    portsrepo.AccountRepositoryWithTx
	txnRepo        portsrepo.TransactionRepositoryFacade
	planSvc        portssvc.PlanReaderSvc
}

// NewInvestmentService creates a new investment lifecycle service.
func NewInvestmentService(
	investmentRepo portsrepo.InvestmentRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryWithTx,
	txnRepo portsrepo.TransactionRepositoryFacade,
	planSvc portssvc.PlanReaderSvc,
) portssvc.InvestmentSvcFacade {
	return &investmentService{
		investmentRepo: investmentRepo,
		accountRepo:    accountRepo,
		txnRepo:        txnRepo,
		planSvc:        planSvc,
	}
}

// CreateInvestment validates the amount against the plan's band, debits the
// principal and records a PENDING investment. Validation happens before any
// ledger touch, so a failed request leaves the balance unchanged.
func (s *investmentService) CreateInvestment(ctx context.Context, userID string, req dto.CreateInvestmentRequest) (*domain.Investment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	plan, err := s.planSvc.GetPlan(ctx, req.PlanKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(400, "unknown investment plan", apperrors.ErrValidation)
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, apperrors.NewAppError(400, "plan is no longer offered", apperrors.ErrValidation)
	}
	if req.Amount.LessThan(plan.MinAmount) || req.Amount.GreaterThan(plan.MaxAmount) {
		return nil, apperrors.NewAppError(400,
			fmt.Sprintf("amount must be between %s and %s for the %s plan", plan.MinAmount, plan.MaxAmount, plan.Name),
			apperrors.ErrValidation)
	}

	now := time.Now()
	investment := domain.Investment{
		InvestmentID: uuid.NewString(),
		UserID:       userID,
		PlanKey:      plan.PlanKey,
		Principal:    req.Amount,
		Status:       domain.InvestmentPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	tx, err := s.investmentRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.investmentRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	change := portsrepo.BalanceChange{
		BalanceDelta:  req.Amount.Neg(),
		InvestedDelta: req.Amount,
	}
	if err := s.accountRepo.ApplyBalanceChangeInTx(ctx, tx, account.AccountID, change, userID, now); err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to debit principal", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return nil, err
	}

	if err := s.investmentRepo.SaveInvestmentInTx(ctx, tx, investment); err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Type:          domain.TxnBuy,
		Amount:        req.Amount,
		Detail:        fmt.Sprintf("Investment %s in %s plan", investment.InvestmentID, plan.Name),
		CreatedAt:     now,
		CreatedBy:     userID,
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := s.investmentRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit investment creation: %w", err)
	}

	logger.Info("Investment created",
		slog.String("investment_id", investment.InvestmentID),
		slog.String("plan_key", string(plan.PlanKey)),
		slog.String("principal", req.Amount.String()),
	)
	return &investment, nil
}

// ListInvestments retrieves a user's investments, newest first.
func (s *investmentService) ListInvestments(ctx context.Context, userID string, limit int, offset int) ([]domain.Investment, error) {
	return s.investmentRepo.ListInvestmentsByUser(ctx, userID, limit, offset)
}

// SummarizeInvestments aggregates a user's investments per plan.
func (s *investmentService) SummarizeInvestments(ctx context.Context, userID string) ([]domain.InvestmentSummary, error) {
	return s.investmentRepo.SummarizeInvestmentsByUser(ctx, userID)
}

// ListPendingInvestments retrieves unresolved records for the admin surface.
func (s *investmentService) ListPendingInvestments(ctx context.Context, limit int, offset int) ([]domain.Investment, error) {
	return s.investmentRepo.ListPendingInvestments(ctx, limit, offset)
}

// ApproveInvestment activates a PENDING record, stamping the start date.
func (s *investmentService) ApproveInvestment(ctx context.Context, investmentID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	if err := s.investmentRepo.ActivateInvestment(ctx, investmentID, now, actorID); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to activate investment", slog.String("investment_id", investmentID), slog.String("error", err.Error()))
		}
		return err
	}

	logger.Info("Investment activated", slog.String("investment_id", investmentID), slog.String("actor", actorID))
	return nil
}

// RejectInvestment cancels a PENDING record and refunds the principal in
// full. No interest is paid.
func (s *investmentService) RejectInvestment(ctx context.Context, investmentID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	investment, err := s.investmentRepo.FindInvestmentByID(ctx, investmentID)
	if err != nil {
		return err
	}

	now := time.Now()
	tx, err := s.investmentRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.investmentRepo.Rollback(ctx, tx)

	if err := s.investmentRepo.CancelInvestmentInTx(ctx, tx, investmentID, actorID, now); err != nil {
		return err
	}

	account, err := s.accountRepo.FindAccountByUserIDForUpdate(ctx, tx, investment.UserID)
	if err != nil {
		return err
	}

	change := portsrepo.BalanceChange{
		BalanceDelta:  investment.Principal,
		InvestedDelta: investment.Principal.Neg(),
	}
	if err := s.accountRepo.ApplyBalanceChangeInTx(ctx, tx, account.AccountID, change, actorID, now); err != nil {
		return err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        investment.UserID,
		Type:          domain.TxnSell,
		Amount:        investment.Principal,
		Detail:        fmt.Sprintf("Investment %s rejected, principal refunded", investment.InvestmentID),
		CreatedAt:     now,
		CreatedBy:     actorID,
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}

	if err := s.investmentRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit investment rejection: %w", err)
	}

	logger.Info("Investment rejected", slog.String("investment_id", investmentID), slog.String("actor", actorID))
	return nil
}
