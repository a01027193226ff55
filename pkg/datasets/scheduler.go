package datasets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler persists datasets with save paths on a cron schedule, so a
// crash loses at most one interval of stateful watchlist updates. A final
// SaveAll at shutdown remains the caller's responsibility.
type Scheduler struct {
	registry *Registry
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for the registry. The schedule is a
// standard cron expression (e.g. "*/5 * * * *"); empty disables the
// scheduler.
func NewScheduler(registry *Registry, schedule string) *Scheduler {
	return &Scheduler{
		registry: registry,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "datasets.scheduler"),
	}
}

// Start begins scheduled saves. If no schedule is configured it does
// nothing. The scheduler stops itself when the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("dataset save schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runSave); err != nil {
		return fmt.Errorf("failed to schedule dataset saves: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("dataset save scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSave executes one save cycle.
func (s *Scheduler) runSave() {
	s.logger.Debug("starting scheduled dataset save")
	if err := s.registry.SaveAll(); err != nil {
		s.logger.Error("scheduled dataset save failed", "error", err)
		return
	}
	s.logger.Debug("scheduled dataset save completed")
}

// Stop halts scheduled saves. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("dataset save scheduler stopped")
}
