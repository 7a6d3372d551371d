package models

import (
	"database/sql"
	"time"
)

// User is the DB representation of a platform user.
// PasswordHash is NULL for Google-only accounts.
type User struct {
	UserID          string         `db:"user_id"`
	Email           string         `db:"email"`
	Name            string         `db:"name"`
	Role            string         `db:"role"`
	PasswordHash    sql.NullString `db:"password_hash"`
	GoogleSubjectID sql.NullString `db:"google_subject_id"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`

	// Refresh token at rest: bcrypt hash plus expiry.
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"`
}
