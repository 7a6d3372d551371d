package services

import (
	"context"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
)

// InvestmentSvcFacade covers the investment record lifecycle up to the
// accrual job, which owns the ACTIVE -> ENDED transition.
type InvestmentSvcFacade interface {
	// CreateInvestment validates the amount against the plan's band, debits
	// the principal and records a PENDING investment. Validation failures
	// leave the ledger untouched.
	CreateInvestment(ctx context.Context, userID string, req dto.CreateInvestmentRequest) (*domain.Investment, error)

	// ListInvestments retrieves a user's investments, newest first.
	ListInvestments(ctx context.Context, userID string, limit int, offset int) ([]domain.Investment, error)

	// SummarizeInvestments aggregates a user's investments per plan.
	SummarizeInvestments(ctx context.Context, userID string) ([]domain.InvestmentSummary, error)

	// ListPendingInvestments retrieves unresolved records for the admin surface.
	ListPendingInvestments(ctx context.Context, limit int, offset int) ([]domain.Investment, error)

	// ApproveInvestment activates a PENDING record, stamping the start date.
	// A second call returns apperrors.ErrConflict.
	ApproveInvestment(ctx context.Context, investmentID string, actorID string) error

	// RejectInvestment cancels a PENDING record and refunds the principal
	// in full. No interest is paid.
	RejectInvestment(ctx context.Context, investmentID string, actorID string) error
}
