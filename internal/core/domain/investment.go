package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus is the lifecycle state of an investment record.
// PENDING -> ACTIVE -> ENDED, or PENDING -> CANCELLED on rejection.
// ENDED and CANCELLED are terminal.
type InvestmentStatus string

const (
	InvestmentPending   InvestmentStatus = "PENDING"
	InvestmentActive    InvestmentStatus = "ACTIVE"
	InvestmentEnded     InvestmentStatus = "ENDED"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

// Investment is a user's commitment of principal to a plan.
type Investment struct {
	InvestmentID  string           `json:"investmentID"` // Primary Key (UUID)
	UserID        string           `json:"userID"`       // FK -> users.user_id
	PlanKey       PlanKey          `json:"planKey"`      // FK -> plans.plan_key
	Principal     decimal.Decimal  `json:"principal"`
	Status        InvestmentStatus `json:"status"`
	StartDate     *time.Time       `json:"startDate,omitempty"`     // Set on activation; nil while PENDING
	InterestPaid  decimal.Decimal  `json:"interestPaid"`            // Interest credited so far
	LastAccruedAt *time.Time       `json:"lastAccruedAt,omitempty"` // Last accrual run that touched this record
	ClosedAt      *time.Time       `json:"closedAt,omitempty"`
	AuditFields
}

// IsTerminal reports whether the record can never accrue again.
func (i Investment) IsTerminal() bool {
	return i.Status == InvestmentEnded || i.Status == InvestmentCancelled
}

// EndDate returns the maturity date for an activated investment.
// The second return is false while the record has no start date.
func (i Investment) EndDate(durationDays int) (time.Time, bool) {
	if i.StartDate == nil {
		return time.Time{}, false
	}
	return i.StartDate.AddDate(0, 0, durationDays), true
}

// InvestmentSummary aggregates a user's investments for one plan.
type InvestmentSummary struct {
	PlanKey        PlanKey         `json:"planKey"`
	Count          int             `json:"count"`
	ActiveCount    int             `json:"activeCount"`
	TotalPrincipal decimal.Decimal `json:"totalPrincipal"`
	InterestPaid   decimal.Decimal `json:"interestPaid"`
}
