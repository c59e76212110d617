package outbox

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs a relay on a cron schedule, skipping a tick while the previous run is still going
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers relay under schedule, e.g. "@every 5s"
func NewScheduler(relay cron.Job, schedule string) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	if _, err := c.AddJob(schedule, relay); err != nil {
		return nil, fmt.Errorf("invalid outbox schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c}, nil
}

// Start begins running the relay in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("Outbox scheduler started")
}

// Stop prevents new runs and waits for a running one to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info("Outbox scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
