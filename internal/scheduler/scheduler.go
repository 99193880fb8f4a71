// Package scheduler runs the live scanner on a fixed cadence. Jobs are
// chained through SkipIfStillRunning, so a firing that arrives while the
// previous invocation of the same job is still in progress is dropped, never
// run concurrently with it.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"swingTraderBot/internal/ports"
)

// Job represents a scheduled job.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger ports.Logger
}

// New creates a new scheduler. SkipIfStillRunning drops a firing while the
// previous invocation of the same job is still in progress.
func New(logger ports.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// AddJob registers a job with a cron schedule (e.g. "@every 15m").
func (s *Scheduler) AddJob(ctx context.Context, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.logger.Debug(ctx, "Running job", map[string]interface{}{"job": job.Name()})
		if err := job.Run(ctx); err != nil {
			s.logger.Error(ctx, err, "Job failed", map[string]interface{}{"job": job.Name()})
			return
		}
		s.logger.Debug(ctx, "Job completed", map[string]interface{}{"job": job.Name()})
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Job registered", map[string]interface{}{"job": job.Name(), "schedule": schedule})
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info(ctx, "Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	<-s.cron.Stop().Done()
	s.logger.Info(ctx, "Scheduler stopped")
}
