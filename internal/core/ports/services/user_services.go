package services

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by their unique identifier.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// RegisterUser creates a new user with a bcrypt password hash and a
	// zero-balance ledger account.
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// UpdateUser updates mutable profile fields.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actorID string) (*domain.User, error)

	// UpsertGoogleUser finds or creates the user matching a verified
	// identity-provider triple, keyed on the provider subject ID.
	UpsertGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error)
}

// UserAuthSupportSvc covers credential verification and refresh token state.
type UserAuthSupportSvc interface {
	// AuthenticateUser verifies email + password and returns the user.
	// Returns apperrors.ErrUnauthorized on any mismatch.
	AuthenticateUser(ctx context.Context, email string, password string) (*domain.User, error)

	// StoreRefreshTokenHash persists the hash and expiry of a refresh token.
	StoreRefreshTokenHash(ctx context.Context, userID string, tokenHash string, expiry time.Time) error

	// GetRefreshToken retrieves the stored refresh token hash and expiry.
	GetRefreshToken(ctx context.Context, userID string) (string, time.Time, error)

	// ClearRefreshToken invalidates the stored refresh token (logout).
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSupportSvc
}
