package repositories

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceChange describes a single ledger mutation applied to an account row.
// Deltas may be negative; the repository rejects any change that would drive
// the balance below zero.
type BalanceChange struct {
	BalanceDelta  decimal.Decimal
	InvestedDelta decimal.Decimal
	InterestDelta decimal.Decimal
}

// AccountReader defines read operations for ledger accounts
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByUserID retrieves the single account owned by a user.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)
}

// AccountWriter defines write operations for ledger accounts
type AccountWriter interface {
	// SaveAccount persists a new zero-balance account.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines the serialized mutation path.
// All balance changes go through these two calls inside one pgx transaction:
// lock the row, then apply the delta.
type AccountTransactionSupport interface {
	// FindAccountByUserIDForUpdate selects the account row and locks it for
	// update within the given transaction.
	FindAccountByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Account, error)

	// ApplyBalanceChangeInTx applies deltas to a locked account row.
	ApplyBalanceChangeInTx(ctx context.Context, tx pgx.Tx, accountID string, change BalanceChange, actorID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
