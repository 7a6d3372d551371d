package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// AccrualRun is the DB representation of one accrual cycle summary.
type AccrualRun struct {
	RunID            string          `db:"run_id"`
	StartedAt        time.Time       `db:"started_at"`
	FinishedAt       sql.NullTime    `db:"finished_at"`
	Processed        int             `db:"processed"`
	Credited         int             `db:"credited"`
	Closed           int             `db:"closed"`
	Failed           int             `db:"failed"`
	TotalDistributed decimal.Decimal `db:"total_distributed"`
}

// JobLock is the DB representation of a background job lease.
type JobLock struct {
	JobName     string    `db:"job_name"`
	HolderID    string    `db:"holder_id"`
	LockedUntil time.Time `db:"locked_until"`
}

// PasswordResetToken is the DB representation of a persisted reset token.
type PasswordResetToken struct {
	TokenID    string       `db:"token_id"`
	UserID     string       `db:"user_id"`
	TokenHash  string       `db:"token_hash"`
	ExpiresAt  time.Time    `db:"expires_at"`
	ConsumedAt sql.NullTime `db:"consumed_at"`
	CreatedAt  time.Time    `db:"created_at"`
}
