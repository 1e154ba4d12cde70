package app

import (
	"context"
	"time"

	"cosmossdk.io/log"
)

// Scheduler runs the fee distributor on a wall-clock interval, independent
// of the block-count trigger in the dex EndBlocker.
type Scheduler struct {
	app      *App
	interval time.Duration
	logger   log.Logger
}

// NewScheduler returns a scheduler for app. A non-positive interval makes Run
// return immediately.
func NewScheduler(app *App, interval time.Duration, logger log.Logger) *Scheduler {
	return &Scheduler{
		app:      app,
		interval: interval,
		logger:   logger.With("module", "scheduler"),
	}
}

// Run distributes fees every interval until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("fee distribution scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("fee distribution scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	report, err := s.app.DistributeFees(ctx)
	if err != nil {
		s.logger.Error("scheduled fee distribution incomplete",
			"settled", len(report.Settled),
			"failed", len(report.Failed),
			"error", err,
		)
		return
	}
	if len(report.Settled) > 0 {
		s.logger.Info("scheduled fee distribution", "settled", len(report.Settled), "payouts", report.Payouts())
	}
}
