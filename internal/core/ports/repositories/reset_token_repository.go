package repositories

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
)

// ResetTokenRepository persists password reset tokens with a TTL.
// Replaces the process-local token map of earlier designs: tokens survive
// restarts and are visible to every instance.
type ResetTokenRepository interface {
	// SaveToken persists a new reset token (hash only).
	SaveToken(ctx context.Context, token domain.PasswordResetToken) error

	// FindTokenByID retrieves a token by its identifier half.
	FindTokenByID(ctx context.Context, tokenID string) (*domain.PasswordResetToken, error)

	// ConsumeToken marks a token used. Returns apperrors.ErrConflict when
	// the token was already consumed.
	ConsumeToken(ctx context.Context, tokenID string, now time.Time) error

	// DeleteExpiredTokens removes tokens past their TTL.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
