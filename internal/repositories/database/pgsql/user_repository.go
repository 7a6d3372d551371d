package pgsql

import (
	"context"
	"database/sql"
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

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user records.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func toDomainUser(m models.User) domain.User {
	u := domain.User{
		UserID: m.UserID,
		Email:  m.Email,
		Name:   m.Name,
		Role:   domain.UserRole(m.Role),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		DeletedAt: m.DeletedAt,
	}
	if m.GoogleSubjectID.Valid {
		u.GoogleSubjectID = m.GoogleSubjectID.String
	}
	return u
}

const userColumns = `user_id, email, name, role, google_subject_id, created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.Name,
		&m.Role,
		&m.GoogleSubjectID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	u := toDomainUser(m)
	return &u, nil
}

// FindUserByID retrieves a user by ID. Soft-deleted users are excluded.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	u, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return u, nil
}

// FindUserByEmail retrieves a user by email address.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL;`
	u, err := scanUser(r.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return u, nil
}

// FindUserByGoogleSubjectID retrieves a user by their identity-provider subject.
func (r *PgxUserRepository) FindUserByGoogleSubjectID(ctx context.Context, subjectID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_subject_id = $1 AND deleted_at IS NULL;`
	u, err := scanUser(r.Pool.QueryRow(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by google subject: %w", err)
	}
	return u, nil
}

// FindPasswordHash retrieves the stored password hash for local login.
// Returns ErrNotFound for identity-provider-only accounts that never set one.
func (r *PgxUserRepository) FindPasswordHash(ctx context.Context, userID string) (string, error) {
	query := `SELECT password_hash FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	var hash sql.NullString
	err := r.Pool.QueryRow(ctx, query, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to find password hash for user %s: %w", userID, err)
	}
	if !hash.Valid || hash.String == "" {
		return "", apperrors.ErrNotFound
	}
	return hash.String, nil
}

// FindRefreshToken retrieves the stored refresh token hash and expiry.
func (r *PgxUserRepository) FindRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	query := `SELECT refresh_token_hash, refresh_token_expiry_time FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	var hash sql.NullString
	var expiry sql.NullTime
	err := r.Pool.QueryRow(ctx, query, userID).Scan(&hash, &expiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.ErrNotFound
		}
		return "", time.Time{}, fmt.Errorf("failed to find refresh token for user %s: %w", userID, err)
	}
	if !hash.Valid || hash.String == "" {
		return "", time.Time{}, apperrors.ErrNotFound
	}
	return hash.String, expiry.Time, nil
}

// ListUsers retrieves a paginated list of users.
func (r *PgxUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", rows.Err())
	}
	return users, nil
}

// SaveUser persists a new user with the given password hash. The hash may
// be empty for identity-provider-only accounts.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User, passwordHash string) error {
	query := `
		INSERT INTO users (user_id, email, name, role, password_hash, google_subject_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	var hash, subject sql.NullString
	if passwordHash != "" {
		hash = sql.NullString{String: passwordHash, Valid: true}
	}
	if user.GoogleSubjectID != "" {
		subject = sql.NullString{String: user.GoogleSubjectID, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		user.UserID,
		user.Email,
		user.Name,
		string(user.Role),
		hash,
		subject,
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: email %s", apperrors.ErrDuplicate, user.Email)
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

// UpdateUser updates mutable profile fields.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET name = $2, role = $3, last_updated_at = $4, last_updated_by = $5
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		user.UserID,
		user.Name,
		string(user.Role),
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.UserID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *PgxUserRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string, now time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, last_updated_at = $3, last_updated_by = $1
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID, passwordHash, now)
	if err != nil {
		return fmt.Errorf("failed to update password hash for user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateRefreshToken stores the hash and expiry of the current refresh
// token. An empty hash clears it, which is how logout works.
func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiry time.Time) error {
	var hash sql.NullString
	var exp sql.NullTime
	if tokenHash != "" {
		hash = sql.NullString{String: tokenHash, Valid: true}
		exp = sql.NullTime{Time: expiry, Valid: true}
	}
	query := `
		UPDATE users
		SET refresh_token_hash = $2, refresh_token_expiry_time = $3
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID, hash, exp)
	if err != nil {
		return fmt.Errorf("failed to update refresh token for user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// LinkGoogleSubject attaches an identity-provider subject to a user.
func (r *PgxUserRepository) LinkGoogleSubject(ctx context.Context, userID string, subjectID string, now time.Time) error {
	query := `
		UPDATE users
		SET google_subject_id = $2, last_updated_at = $3, last_updated_by = $1
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID, subjectID, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: google subject already linked", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to link google subject for user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
