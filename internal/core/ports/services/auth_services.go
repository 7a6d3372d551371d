package services

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a signed JWT for the user (subject = user
	// ID, role carried as a custom claim).
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// GenerateRefreshToken creates a new opaque refresh token and its expiry.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken validates a refresh token string against a
	// user's stored token details and returns the user when valid.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error)
}

// AuthSvcFacade covers the persisted password reset flow.
type AuthSvcFacade interface {
	// RequestPasswordReset creates a single-use reset token for the email's
	// user and returns the raw token. Unknown emails return no error and an
	// empty token, so the endpoint does not leak account existence.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// ConfirmPasswordReset redeems a reset token and sets the new password.
	ConfirmPasswordReset(ctx context.Context, rawToken string, newPassword string) error

	// PurgeExpiredResetTokens removes reset tokens past their TTL.
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for the delegated
// identity provider integration.
type GoogleOAuthHandlerSvcFacade interface {
	// GenerateStateString creates a CSRF token for the OAuth redirect flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// ValidateGoogleIDToken validates an ID token and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}
