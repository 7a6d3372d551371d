package dto

import (
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccrualRunResponse summarizes one accrual cycle execution.
type AccrualRunResponse struct {
	RunID            string          `json:"runID"`
	StartedAt        time.Time       `json:"startedAt"`
	FinishedAt       *time.Time      `json:"finishedAt,omitempty"`
	Processed        int             `json:"processed"`
	Credited         int             `json:"credited"`
	Closed           int             `json:"closed"`
	Failed           int             `json:"failed"`
	TotalDistributed decimal.Decimal `json:"totalDistributed"`
}

// ToAccrualRunResponse converts a domain.AccrualRun to its DTO
func ToAccrualRunResponse(run *domain.AccrualRun) AccrualRunResponse {
	return AccrualRunResponse{
		RunID:            run.RunID,
		StartedAt:        run.StartedAt,
		FinishedAt:       run.FinishedAt,
		Processed:        run.Processed,
		Credited:         run.Credited,
		Closed:           run.Closed,
		Failed:           run.Failed,
		TotalDistributed: run.TotalDistributed,
	}
}
