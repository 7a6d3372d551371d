package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	"github.com/cryptonest/cryptonest_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for ledger account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		UserID:        d.UserID,
		Balance:       d.Balance,
		TotalInvested: d.TotalInvested,
		TotalInterest: d.TotalInterest,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		UserID:        m.UserID,
		Balance:       m.Balance,
		TotalInvested: m.TotalInvested,
		TotalInterest: m.TotalInterest,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const accountColumns = `account_id, user_id, balance, total_invested, total_interest, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.UserID,
		&m.Balance,
		&m.TotalInvested,
		&m.TotalInterest,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// SaveAccount inserts a new zero-balance account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.UserID,
		m.Balance,
		m.TotalInvested,
		m.TotalInterest,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account for user %s already exists", apperrors.ErrDuplicate, m.UserID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountByUserID retrieves the single account owned by a user.
func (r *PgxAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find account for user %s: %w", userID, err)
	}
	return acc, nil
}

// FindAccountByUserIDForUpdate selects the account row and locks it for update.
// Must be called within a transaction; the lock serializes every ledger
// mutation touching this account.
func (r *PgxAccountRepository) FindAccountByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 FOR UPDATE;`
	acc, err := scanAccount(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock account for user %s: %w", userID, err)
	}
	return acc, nil
}

// ApplyBalanceChangeInTx applies deltas to a locked account row.
// The WHERE guard is a second line of defense: the service checks the locked
// balance first, so zero rows affected here means a negative balance was
// about to be written.
func (r *PgxAccountRepository) ApplyBalanceChangeInTx(ctx context.Context, tx pgx.Tx, accountID string, change portsrepo.BalanceChange, actorID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    total_invested = total_invested + $3,
		    total_interest = total_interest + $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE account_id = $1 AND balance + $2 >= 0;
	`
	cmdTag, err := tx.Exec(ctx, query,
		accountID,
		change.BalanceDelta,
		change.InvestedDelta,
		change.InterestDelta,
		now,
		actorID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply balance change to account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the account vanished or the change would go negative.
		if _, findErr := r.FindAccountByID(ctx, accountID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: balance change of %s rejected for account %s", apperrors.ErrInsufficientFunds, change.BalanceDelta.String(), accountID)
	}
	return nil
}
