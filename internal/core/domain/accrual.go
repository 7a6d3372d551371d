package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccrualRun is the persisted summary of one accrual cycle execution.
type AccrualRun struct {
	RunID            string          `json:"runID"` // Primary Key (UUID)
	StartedAt        time.Time       `json:"startedAt"`
	FinishedAt       *time.Time      `json:"finishedAt,omitempty"`
	Processed        int             `json:"processed"`     // Active records examined
	Credited         int             `json:"credited"`      // Records that received interest
	Closed           int             `json:"closed"`        // Records transitioned to ENDED
	Failed           int             `json:"failed"`        // Records skipped due to per-record errors
	TotalDistributed decimal.Decimal `json:"totalDistributed"`
}

// JobLock is a lease guaranteeing at-most-one concurrent execution of a
// named background job. A crashed holder's lease expires at LockedUntil.
type JobLock struct {
	JobName     string    `json:"jobName"` // Primary Key
	HolderID    string    `json:"holderID"`
	LockedUntil time.Time `json:"lockedUntil"`
}
