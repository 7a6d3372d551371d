package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
)

// AccrualScheduler fires the interest accrual cycle once per day at a fixed
// UTC hour. The cycle itself is guarded by a database lease, so running one
// scheduler per instance is safe: only one of them wins each day.
type AccrualScheduler struct {
	accrualService portssvc.AccrualSvcFacade
	authService    portssvc.AuthSvcFacade
	logger         *slog.Logger
	hourUTC        int
}

// NewAccrualScheduler creates the daily trigger for the accrual batch.
// The same tick also purges expired password reset tokens.
func NewAccrualScheduler(accrualService portssvc.AccrualSvcFacade, authService portssvc.AuthSvcFacade, logger *slog.Logger, hourUTC int) *AccrualScheduler {
	return &AccrualScheduler{
		accrualService: accrualService,
		authService:    authService,
		logger:         logger,
		hourUTC:        hourUTC,
	}
}

// Start launches the scheduling loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (s *AccrualScheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *AccrualScheduler) run(ctx context.Context) {
	for {
		wait := time.Until(s.nextFireTime(time.Now()))
		s.logger.Info("Next accrual cycle scheduled", slog.Duration("in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Accrual scheduler stopped")
			return
		case <-timer.C:
			s.fire(ctx)
		}
	}
}

func (s *AccrualScheduler) fire(ctx context.Context) {
	logger := s.logger.With(slog.String("job", "daily_interest_accrual"))
	runCtx, cancel := context.WithTimeout(middleware.WithLogger(ctx, logger), 30*time.Minute)
	defer cancel()

	if purged, err := s.authService.PurgeExpiredResetTokens(runCtx); err != nil {
		logger.Error("Failed to purge expired reset tokens", slog.String("error", err.Error()))
	} else if purged > 0 {
		logger.Info("Purged expired reset tokens", slog.Int64("count", purged))
	}

	run, err := s.accrualService.RunAccrualCycle(runCtx)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Info("Accrual cycle already running elsewhere, skipping")
			return
		}
		logger.Error("Scheduled accrual cycle failed", slog.String("error", err.Error()))
		return
	}

	logger.Info("Scheduled accrual cycle finished",
		slog.String("run_id", run.RunID),
		slog.Int("processed", run.Processed),
		slog.Int("credited", run.Credited),
		slog.Int("closed", run.Closed),
		slog.Int("failed", run.Failed),
	)
}

// nextFireTime returns the next occurrence of the configured UTC hour
// strictly after now.
func (s *AccrualScheduler) nextFireTime(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
