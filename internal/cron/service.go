package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/metrics"
	robfig "github.com/robfig/cron/v3"
)

const defaultJobTimeout = 10 * time.Minute

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Lock       Lock
	Metrics    *metrics.CronJobMetrics
	JobTimeout time.Duration
}

// Service executes registered cron jobs on their schedules.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	lock       Lock
	metrics    *metrics.CronJobMetrics
	jobTimeout time.Duration
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	timeout := params.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		lock:       params.Lock,
		metrics:    params.Metrics,
		jobTimeout: timeout,
	}, nil
}

// Run schedules every registered job and blocks until the context is canceled.
// Running jobs are allowed to finish before Run returns.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scheduler := robfig.New(robfig.WithSeconds())
	for _, entry := range s.registry.Entries() {
		job := entry.Job
		if _, err := scheduler.AddFunc(entry.Schedule, func() {
			jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
			defer cancel()
			s.runLocked(jobCtx, job)
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.Name(), entry.Schedule, err)
		}
		logCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "schedule": entry.Schedule})
		s.logg.Info(logCtx, "cron job scheduled")
	}

	scheduler.Start()
	<-ctx.Done()
	s.logg.Info(ctx, "cron service context canceled")
	<-scheduler.Stop().Done()
	return ctx.Err()
}

// RunNow executes one registered job immediately under its lock.
func (s *Service) RunNow(ctx context.Context, name string) error {
	for _, job := range s.registry.Jobs() {
		if job.Name() == name {
			s.runLocked(ctx, job)
			return nil
		}
	}
	return fmt.Errorf("unknown job %s", name)
}

func (s *Service) runLocked(ctx context.Context, job Job) {
	locked, err := s.lock.Acquire(ctx, job.Name())
	if err != nil {
		s.logg.Error(s.logg.WithJob(ctx, job.Name()), "lock acquire failed", err)
		return
	}
	if !locked {
		s.logg.Debug(s.logg.WithJob(ctx, job.Name()), "another worker holds the job lock; skipping")
		s.metrics.IncSkipped(job.Name())
		return
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx), job.Name()); relErr != nil {
			s.logg.Error(ctx, "failed to release cron lock", relErr)
		}
	}()
	s.runJob(ctx, job)
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithJob(ctx, job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveRun(job.Name(), duration, err)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		return
	}
	s.logg.Info(jobCtx, "job completed")
}
