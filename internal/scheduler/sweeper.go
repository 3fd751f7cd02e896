package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger drops expired sessions and reports how many were removed.
type Purger interface {
	Purge(now time.Time) int
}

// Sweeper periodically evicts expired in-memory selections.
type Sweeper struct {
	cron     *cron.Cron
	purger   Purger
	schedule string
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweeper builds a sweeper running on a cron schedule such as "@every 5m".
func NewSweeper(purger Purger, schedule string, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		cron:     cron.New(),
		purger:   purger,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the sweep job and starts the scheduler in the background.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("add session sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep, bounded by ctx.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("session sweeper stop timed out")
		return
	}
	s.logger.Info("session sweeper stopped")
}

// RunOnce purges expired sessions immediately.
func (s *Sweeper) RunOnce() int {
	removed := s.purger.Purge(s.now())
	if removed > 0 {
		s.logger.Info("expired sessions purged", zap.Int("removed", removed))
	} else {
		s.logger.Debug("session sweep found nothing to purge")
	}
	return removed
}
