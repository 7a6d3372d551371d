package services

import (
	"context"
	"errors"
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

type accountService struct {
	accountRepo portsrepo.AccountRepositoryWithTx
	txnRepo     portsrepo.TransactionRepositoryFacade
}

// NewAccountService creates a new ledger account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, txnRepo portsrepo.TransactionRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, txnRepo: txnRepo}
}

// GetAccountForUser retrieves the ledger account owned by a user.
func (s *accountService) GetAccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find account", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return account, nil
}

// CreateAccountForUser creates the zero-balance account at registration.
func (s *accountService) CreateAccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	account := domain.Account{
		AccountID:     uuid.NewString(),
		UserID:        userID,
		Balance:       decimal.Zero,
		TotalInvested: decimal.Zero,
		TotalInterest: decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to create account", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("user_id", userID))
	return &account, nil
}

// ReconcileAccount recomputes balance and cumulative interest from the
// transaction log and reports drift against the cached account fields.
// Credits are DEPOSIT, INTEREST and SELL; debits are WITHDRAWAL and BUY;
// SECURITY entries carry no amount.
func (s *accountService) ReconcileAccount(ctx context.Context, userID string) (*domain.ReconciliationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sums, err := s.txnRepo.SumAmountsByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to sum transactions for reconciliation", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}

	sum := func(t domain.TransactionType) decimal.Decimal {
		if v, ok := sums[t]; ok {
			return v
		}
		return decimal.Zero
	}

	recomputedBalance := sum(domain.TxnDeposit).
		Add(sum(domain.TxnInterest)).
		Add(sum(domain.TxnSell)).
		Sub(sum(domain.TxnWithdrawal)).
		Sub(sum(domain.TxnBuy))
	recomputedInterest := sum(domain.TxnInterest)

	report := &domain.ReconciliationReport{
		UserID:             userID,
		CachedBalance:      account.Balance,
		RecomputedBalance:  recomputedBalance,
		CachedInterest:     account.TotalInterest,
		RecomputedInterest: recomputedInterest,
		Consistent: account.Balance.Equal(recomputedBalance) &&
			account.TotalInterest.Equal(recomputedInterest),
	}

	if !report.Consistent {
		logger.Warn("Account projection drift detected",
			slog.String("user_id", userID),
			slog.String("cached_balance", account.Balance.String()),
			slog.String("recomputed_balance", recomputedBalance.String()),
		)
	}
	return report, nil
}
