// Package retention purges expired audit entries on a cron schedule.
package retention

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/grbod/labtrack/internal/domain"
)

// Scheduler runs the audit retention purge on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	audit  domain.AuditRepository
	days   int
	logger *slog.Logger
}

// NewScheduler creates a retention scheduler. days is the number of days
// of audit history to keep; zero or negative disables purging entirely.
func NewScheduler(audit domain.AuditRepository, days int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		audit:  audit,
		days:   days,
		logger: logger,
	}
}

// Start registers the purge job and starts the cron loop. schedule uses
// the standard five-field cron syntax.
func (s *Scheduler) Start(schedule string) error {
	if s.days <= 0 {
		s.logger.Info("audit retention disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("audit retention scheduler started", "schedule", schedule, "days", s.days)
	return nil
}

// Stop gracefully stops the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("audit retention scheduler stopped")
}

// RunOnce executes a single purge pass. Exposed so the purge can be
// triggered outside the schedule.
func (s *Scheduler) RunOnce(ctx context.Context) {
	purged, err := s.audit.PurgeOlderThan(ctx, s.days)
	if err != nil {
		s.logger.Warn("audit retention purge failed", "error", err)
		return
	}
	if purged > 0 {
		s.logger.Info("purged expired audit entries", "count", purged, "days", s.days)
	}
}
