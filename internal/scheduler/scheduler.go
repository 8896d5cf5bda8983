package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Job is one calendar-triggered task. Jobs run on the cron's single
// goroutine; a panicking or failing job is logged and never takes
// the process down.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

func (s *Scheduler) Register(job Job) error {
	_, err := s.cron.AddFunc(job.Spec, s.wrap(job))
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		s.logger.Warn("scheduler stop timed out waiting for running jobs")
	}
}

func (s *Scheduler) wrap(job Job) func() {
	return func() {
		runID := uuid.NewString()
		ctx := context.Background()
		logger := s.logger.With("job", job.Name, "run_id", runID)

		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("scheduled job panicked", "panic", rec)
			}
		}()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			logger.Error("scheduled job failed", "error", err, "elapsed", time.Since(start))
			return
		}
		logger.Info("scheduled job finished", "elapsed", time.Since(start))
	}
}
