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
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accrualJobName is the lease key guarding concurrent cycles.
const accrualJobName = "daily_interest_accrual"

// systemActorID is the audit identity used for autonomous mutations.
const systemActorID = "system"

type accrualService struct {
	investmentRepo portsrepo.InvestmentRepositoryWithTx
	accountRepo    portsrepo.AccountRepositoryWithTx
	txnRepo        portsrepo.TransactionRepositoryFacade
	jobLockRepo    portsrepo.JobLockRepository
	runRepo        portsrepo.AccrualRunRepository
	planSvc        portssvc.PlanReaderSvc
	lockTTL        time.Duration
}

// NewAccrualService creates the daily interest accrual service.
func NewAccrualService(
	investmentRepo portsrepo.InvestmentRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryWithTx,
	txnRepo portsrepo.TransactionRepositoryFacade,
	jobLockRepo portsrepo.JobLockRepository,
	runRepo portsrepo.AccrualRunRepository,
	planSvc portssvc.PlanReaderSvc,
	lockTTL time.Duration,
) portssvc.AccrualSvcFacade {
	return &accrualService{
		investmentRepo: investmentRepo,
		accountRepo:    accountRepo,
		txnRepo:        txnRepo,
		jobLockRepo:    jobLockRepo,
		runRepo:        runRepo,
		planSvc:        planSvc,
		lockTTL:        lockTTL,
	}
}

// RunAccrualCycle walks every ACTIVE investment once. Each record pays
// either one day of interest or, at maturity, the unpaid remainder of the
// full-term interest, and matured or broken records are closed. Each record
// commits in its own database transaction so one bad record cannot poison
// the rest of the batch. A job lease keeps concurrent cycles out; a record
// already touched today is skipped, so re-running within the same UTC day
// is a no-op. Runs credit at most one day per record; days missed while the
// process was down are not caught up.
func (s *accrualService) RunAccrualCycle(ctx context.Context) (*domain.AccrualRun, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	holderID := uuid.NewString()
	if err := s.jobLockRepo.AcquireLock(ctx, accrualJobName, holderID, now.Add(s.lockTTL)); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Accrual cycle already in flight, skipping")
			return nil, err
		}
		logger.Error("Failed to acquire accrual lease", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := s.jobLockRepo.ReleaseLock(ctx, accrualJobName, holderID); err != nil {
			logger.Error("Failed to release accrual lease", slog.String("error", err.Error()))
		}
	}()

	run := domain.AccrualRun{
		RunID:            uuid.NewString(),
		StartedAt:        now,
		TotalDistributed: decimal.Zero,
	}
	if err := s.runRepo.SaveRun(ctx, run); err != nil {
		logger.Error("Failed to record accrual run start", slog.String("error", err.Error()))
		return nil, err
	}

	investments, err := s.investmentRepo.ListActiveInvestments(ctx)
	if err != nil {
		logger.Error("Failed to list active investments", slog.String("error", err.Error()))
		return nil, err
	}

	for _, inv := range investments {
		run.Processed++

		credited, closed, err := s.accrueOne(ctx, inv, now)
		if err != nil {
			run.Failed++
			logger.Error("Accrual failed for investment",
				slog.String("investment_id", inv.InvestmentID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if closed {
			run.Closed++
		}
		if credited.IsPositive() {
			run.Credited++
			run.TotalDistributed = run.TotalDistributed.Add(credited)
		}
	}

	finishedAt := time.Now().UTC()
	run.FinishedAt = &finishedAt
	if err := s.runRepo.FinishRun(ctx, run); err != nil {
		logger.Error("Failed to record accrual run finish", slog.String("error", err.Error()))
	}

	logger.Info("Accrual cycle finished",
		slog.String("run_id", run.RunID),
		slog.Int("processed", run.Processed),
		slog.Int("credited", run.Credited),
		slog.Int("closed", run.Closed),
		slog.Int("failed", run.Failed),
		slog.String("total_distributed", run.TotalDistributed.String()),
	)
	return &run, nil
}

// accrueOne applies one cycle's effect to a single investment inside its
// own transaction. Returns the interest credited and whether the record
// was closed.
func (s *accrualService) accrueOne(ctx context.Context, inv domain.Investment, now time.Time) (decimal.Decimal, bool, error) {
	// Records whose plan vanished or that never got a start date cannot
	// accrue. Close them so they stop surfacing every cycle.
	plan, err := s.planSvc.GetPlan(ctx, inv.PlanKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, true, s.closeDefensively(ctx, inv, now, "plan no longer exists")
		}
		return decimal.Zero, false, err
	}
	if inv.StartDate == nil {
		return decimal.Zero, true, s.closeDefensively(ctx, inv, now, "active record has no start date")
	}

	endDate, _ := inv.EndDate(plan.DurationDays)
	if !now.Before(endDate) {
		// Matured: pay the unpaid remainder of the full-term interest.
		// Daily payments already made are subtracted so the lifetime total
		// is exactly principal * rate / 100.
		remainder := plan.TotalInterest(inv.Principal).Sub(inv.InterestPaid)
		if remainder.IsNegative() {
			remainder = decimal.Zero
		}
		detail := fmt.Sprintf("Final interest payout, investment %s matured", inv.InvestmentID)
		if err := s.creditAndTransition(ctx, inv, remainder, now, detail, true); err != nil {
			return decimal.Zero, false, err
		}
		return remainder, true, nil
	}

	// Idempotence guard: one daily credit per UTC day per record. Maturity
	// is exempt so a record that got its daily payment in the morning still
	// closes in an afternoon re-run.
	if inv.LastAccruedAt != nil && sameUTCDay(*inv.LastAccruedAt, now) {
		return decimal.Zero, false, nil
	}

	daily := plan.DailyInterest(inv.Principal)
	if !daily.IsPositive() {
		// Zero-rate plans accrue nothing and write nothing.
		return decimal.Zero, false, nil
	}

	detail := fmt.Sprintf("Daily interest, investment %s", inv.InvestmentID)
	if err := s.creditAndTransition(ctx, inv, daily, now, detail, false); err != nil {
		return decimal.Zero, false, err
	}
	return daily, false, nil
}

// creditAndTransition credits interest to the owner's ledger, appends the
// audit entry and advances the investment, all in one transaction.
func (s *accrualService) creditAndTransition(ctx context.Context, inv domain.Investment, interest decimal.Decimal, now time.Time, detail string, close bool) error {
	tx, err := s.investmentRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.investmentRepo.Rollback(ctx, tx)

	if interest.IsPositive() {
		account, err := s.accountRepo.FindAccountByUserIDForUpdate(ctx, tx, inv.UserID)
		if err != nil {
			return err
		}

		change := portsrepo.BalanceChange{
			BalanceDelta:  interest,
			InterestDelta: interest,
		}
		if err := s.accountRepo.ApplyBalanceChangeInTx(ctx, tx, account.AccountID, change, systemActorID, now); err != nil {
			return err
		}

		txn := domain.Transaction{
			TransactionID: uuid.NewString(),
			UserID:        inv.UserID,
			Type:          domain.TxnInterest,
			Amount:        interest,
			Detail:        detail,
			CreatedAt:     now,
			CreatedBy:     systemActorID,
		}
		if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}
	}

	if close {
		if err := s.investmentRepo.CloseInvestmentInTx(ctx, tx, inv.InvestmentID, interest, now); err != nil {
			return err
		}
	} else {
		if err := s.investmentRepo.ApplyAccrualInTx(ctx, tx, inv.InvestmentID, interest, now); err != nil {
			return err
		}
	}

	if err := s.investmentRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit accrual: %w", err)
	}
	return nil
}

// closeDefensively ends a record that can never accrue, with no interest
// paid, and leaves a zero-amount audit entry explaining why.
func (s *accrualService) closeDefensively(ctx context.Context, inv domain.Investment, now time.Time, reason string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.investmentRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.investmentRepo.Rollback(ctx, tx)

	if err := s.investmentRepo.CloseInvestmentInTx(ctx, tx, inv.InvestmentID, decimal.Zero, now); err != nil {
		return err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        inv.UserID,
		Type:          domain.TxnSecurity,
		Amount:        decimal.Zero,
		Detail:        fmt.Sprintf("Investment %s closed: %s", inv.InvestmentID, reason),
		CreatedAt:     now,
		CreatedBy:     systemActorID,
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}

	if err := s.investmentRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit defensive closure: %w", err)
	}

	logger.Warn("Investment closed defensively",
		slog.String("investment_id", inv.InvestmentID),
		slog.String("reason", reason),
	)
	return nil
}

// LatestRun retrieves the most recent run summary, if any.
func (s *accrualService) LatestRun(ctx context.Context) (*domain.AccrualRun, error) {
	return s.runRepo.FindLatestRun(ctx)
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
