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
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxResetTokenRepository struct {
	BaseRepository
}

// newPgxResetTokenRepository creates a new repository for password reset tokens.
func newPgxResetTokenRepository(pool *pgxpool.Pool) portsrepo.ResetTokenRepository {
	return &PgxResetTokenRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ResetTokenRepository = (*PgxResetTokenRepository)(nil)

// SaveToken persists a new reset token. Only the hash is stored.
func (r *PgxResetTokenRepository) SaveToken(ctx context.Context, token domain.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (token_id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		token.TokenID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save reset token %s: %w", token.TokenID, err)
	}
	return nil
}

// FindTokenByID retrieves a token by its identifier half.
func (r *PgxResetTokenRepository) FindTokenByID(ctx context.Context, tokenID string) (*domain.PasswordResetToken, error) {
	query := `
		SELECT token_id, user_id, token_hash, expires_at, consumed_at, created_at
		FROM password_reset_tokens
		WHERE token_id = $1;
	`
	var m models.PasswordResetToken
	err := r.Pool.QueryRow(ctx, query, tokenID).Scan(
		&m.TokenID,
		&m.UserID,
		&m.TokenHash,
		&m.ExpiresAt,
		&m.ConsumedAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reset token %s: %w", tokenID, err)
	}

	token := domain.PasswordResetToken{
		TokenID:   m.TokenID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
	if m.ConsumedAt.Valid {
		t := m.ConsumedAt.Time
		token.ConsumedAt = &t
	}
	return &token, nil
}

// ConsumeToken marks a token used. The consumed_at guard makes a second
// redemption attempt a conflict.
func (r *PgxResetTokenRepository) ConsumeToken(ctx context.Context, tokenID string, now time.Time) error {
	query := `
		UPDATE password_reset_tokens
		SET consumed_at = $2
		WHERE token_id = $1 AND consumed_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tokenID, now)
	if err != nil {
		return fmt.Errorf("failed to consume reset token %s: %w", tokenID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindTokenByID(ctx, tokenID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check reset token %s after update: %w", tokenID, findErr)
		}
		return fmt.Errorf("%w: reset token %s already consumed", apperrors.ErrConflict, tokenID)
	}
	return nil
}

// DeleteExpiredTokens removes tokens past their TTL.
func (r *PgxResetTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < $1;`
	cmdTag, err := r.Pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
