package repositories

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by ID. Soft-deleted users are excluded.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email address.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByGoogleSubjectID retrieves a user by their identity-provider subject.
	FindUserByGoogleSubjectID(ctx context.Context, subjectID string) (*domain.User, error)

	// FindPasswordHash retrieves the stored password hash for local login.
	FindPasswordHash(ctx context.Context, userID string) (string, error)

	// FindRefreshToken retrieves the stored refresh token hash and expiry.
	FindRefreshToken(ctx context.Context, userID string) (hash string, expiry time.Time, err error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user with the given password hash (may be
	// empty for identity-provider-only accounts).
	SaveUser(ctx context.Context, user domain.User, passwordHash string) error

	// UpdateUser updates mutable profile fields.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string, now time.Time) error

	// UpdateRefreshToken stores the hash and expiry of the current refresh
	// token; empty hash clears it (logout).
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiry time.Time) error

	// LinkGoogleSubject attaches an identity-provider subject to a user.
	LinkGoogleSubject(ctx context.Context, userID string, subjectID string, now time.Time) error
}

// UserRepositoryFacade combines all user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
