package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the archiver on a cron schedule (e.g. daily at 3 AM).
type Scheduler struct {
	archiver *Archiver
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a new archival scheduler.
func NewScheduler(archiver *Archiver) *Scheduler {
	return &Scheduler{
		archiver: archiver,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "events.scheduler"),
	}
}

// Start begins scheduled archival based on the configured cron expression.
//
// Common expressions:
//   - "0 3 * * *"   - Daily at 3 AM
//   - "0 */6 * * *" - Every 6 hours
//   - "0 0 * * 0"   - Weekly on Sunday at midnight
//
// If the schedule is empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.archiver.config.Schedule
	if schedule == "" {
		s.logger.Info("archive schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runArchival(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule archival: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("archival scheduler started", "schedule", schedule)
	return nil
}

// Stop halts scheduled archival and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false

	s.logger.Info("archival scheduler stopped")
}

// runArchival executes one archival pass and logs the outcome.
func (s *Scheduler) runArchival(ctx context.Context) {
	written, path, err := s.archiver.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled archival failed", "error", err)
		return
	}
	if written > 0 {
		s.logger.Info("scheduled archival complete", "events", written, "path", path)
	}
}
