package services

import (
	"context"
	"log/slog"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
)

type transactionService struct {
	txnRepo portsrepo.TransactionRepositoryFacade
}

// NewTransactionService creates a new audit trail read service.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade) portssvc.TransactionSvcFacade {
	return &transactionService{txnRepo: txnRepo}
}

// ListTransactions retrieves a user's transactions, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, limit int, offset int) ([]domain.Transaction, error) {
	transactions, err := s.txnRepo.ListTransactionsByUser(ctx, userID, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list transactions", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}
	return transactions, nil
}
