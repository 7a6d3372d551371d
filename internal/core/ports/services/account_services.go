package services

import (
	"context"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
)

// AccountReaderSvc defines read operations for ledger accounts
type AccountReaderSvc interface {
	// GetAccountForUser retrieves the ledger account owned by a user.
	GetAccountForUser(ctx context.Context, userID string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for ledger accounts
type AccountWriterSvc interface {
	// CreateAccountForUser creates the zero-balance account at registration.
	CreateAccountForUser(ctx context.Context, userID string) (*domain.Account, error)
}

// AccountReconcilerSvc recomputes the cached projection from the audit trail.
type AccountReconcilerSvc interface {
	// ReconcileAccount recomputes balance and cumulative interest from the
	// transaction log and reports drift against the cached account fields.
	ReconcileAccount(ctx context.Context, userID string) (*domain.ReconciliationReport, error)
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountReconcilerSvc
}
