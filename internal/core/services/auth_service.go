package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
	"github.com/cryptonest/cryptonest_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// tokenService implements the TokenSvcFacade for handling JWT and refresh tokens.
type tokenService struct {
	cfg         *config.Config
	userService portssvc.UserSvcFacade
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, userService portssvc.UserSvcFacade) portssvc.TokenSvcFacade {
	return &tokenService{
		cfg:         cfg,
		userService: userService,
	}
}

// GenerateAccessToken creates a new JWT access token for the given user.
// The role claim rides along for the admin middleware.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user.UserID, string(user.Role), s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}

// GenerateRefreshToken creates a new opaque refresh token and its expiry.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	rawRefreshToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate secure random string for refresh token: %w", err)
	}

	expiryTime := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	return rawRefreshToken, expiryTime, nil
}

// ValidateAndParseRefreshToken validates a refresh token string against a
// user's stored token details and returns the user when valid.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to retrieve user for refresh token validation: %w", err)
	}

	storedHash, expiry, err := s.userService.GetRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if time.Now().After(expiry) {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CompareRefreshTokenHash(refreshTokenString, storedHash) {
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}

// authService covers the persisted password reset flow. Raw tokens are
// handed out as "tokenID.secret"; only a bcrypt hash of the secret half is
// stored, so a database leak does not expose usable tokens.
type authService struct {
	cfg         *config.Config
	userRepo    portsrepo.UserRepositoryFacade
	tokenRepo   portsrepo.ResetTokenRepository
	accountRepo portsrepo.AccountRepositoryWithTx
	txnRepo     portsrepo.TransactionRepositoryFacade
}

// NewAuthService creates a new password reset service.
func NewAuthService(cfg *config.Config, userRepo portsrepo.UserRepositoryFacade, tokenRepo portsrepo.ResetTokenRepository, accountRepo portsrepo.AccountRepositoryWithTx, txnRepo portsrepo.TransactionRepositoryFacade) portssvc.AuthSvcFacade {
	return &authService{cfg: cfg, userRepo: userRepo, tokenRepo: tokenRepo, accountRepo: accountRepo, txnRepo: txnRepo}
}

// RequestPasswordReset creates a single-use reset token for the email's
// user. Unknown emails return no error and an empty token so the endpoint
// does not leak account existence.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	secret, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token secret: %w", err)
	}
	secretHash, err := utils.HashPassword(secret)
	if err != nil {
		return "", fmt.Errorf("failed to hash reset token secret: %w", err)
	}

	now := time.Now()
	token := domain.PasswordResetToken{
		TokenID:   uuid.NewString(),
		UserID:    user.UserID,
		TokenHash: secretHash,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.tokenRepo.SaveToken(ctx, token); err != nil {
		logger.Error("Failed to save reset token", slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return "", err
	}

	logger.Info("Password reset token issued", slog.String("user_id", user.UserID))
	return token.TokenID + "." + secret, nil
}

// ConfirmPasswordReset redeems a reset token and sets the new password.
// Consumption is guarded server-side, so a token redeems at most once.
func (s *authService) ConfirmPasswordReset(ctx context.Context, rawToken string, newPassword string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tokenID, secret, found := strings.Cut(rawToken, ".")
	if !found || tokenID == "" || secret == "" {
		return apperrors.ErrUnauthorized
	}

	token, err := s.tokenRepo.FindTokenByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUnauthorized
		}
		return err
	}

	now := time.Now()
	if !token.IsUsable(now) {
		return apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(secret, token.TokenHash) {
		logger.Warn("Reset token secret mismatch", slog.String("token_id", tokenID))
		return apperrors.ErrUnauthorized
	}

	if err := s.tokenRepo.ConsumeToken(ctx, tokenID, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUnauthorized
		}
		return err
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, token.UserID, passwordHash, now); err != nil {
		logger.Error("Failed to update password", slog.String("user_id", token.UserID), slog.String("error", err.Error()))
		return err
	}

	// A successful reset invalidates any live session refresh token.
	if err := s.userRepo.UpdateRefreshToken(ctx, token.UserID, "", time.Time{}); err != nil {
		logger.Error("Failed to clear refresh token after reset", slog.String("user_id", token.UserID), slog.String("error", err.Error()))
	}

	if err := s.recordPasswordChange(ctx, token.UserID, now); err != nil {
		logger.Error("Failed to record password change audit entry", slog.String("user_id", token.UserID), slog.String("error", err.Error()))
	}

	logger.Info("Password reset completed", slog.String("user_id", token.UserID))
	return nil
}

// recordPasswordChange appends a zero-amount SECURITY entry to the user's
// audit trail. The password itself is already changed at this point, so a
// failure here is logged by the caller rather than surfaced to the user.
func (s *authService) recordPasswordChange(ctx context.Context, userID string, now time.Time) error {
	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.accountRepo.Rollback(ctx, tx)

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Type:          domain.TxnSecurity,
		Amount:        decimal.Zero,
		Detail:        "Password changed via reset token",
		CreatedAt:     now,
		CreatedBy:     userID,
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}
	return s.accountRepo.Commit(ctx, tx)
}

// PurgeExpiredResetTokens removes reset tokens past their TTL.
func (s *authService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	purged, err := s.tokenRepo.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to purge expired reset tokens", slog.String("error", err.Error()))
		return 0, err
	}
	return purged, nil
}

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	cfg          *config.Config
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config) portssvc.GoogleOAuthHandlerSvcFacade {
	return &googleOAuthHandlerService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// GenerateStateString creates a CSRF token for the OAuth redirect flow.
func (s *googleOAuthHandlerService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for login.
func (s *googleOAuthHandlerService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}
	return token, nil
}

// ValidateGoogleIDToken validates an ID token and returns its payload.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, errors.New("google client ID is not configured in the application")
	}

	payload, err := idtoken.Validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}
	return payload, nil
}
