// Package jobs runs the bot's periodic work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one periodic task. An empty Spec disables the job.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Recorder receives the outcome of every run.
type Recorder interface {
	JobRan(job string, err error)
}

type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	recorder Recorder
	jobs     []string
}

func NewScheduler(loc *time.Location, recorder Recorder) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
			cron.WithLogger(logger),
		),
		ctx:      ctx,
		cancel:   cancel,
		recorder: recorder,
	}
}

// Add registers a job. It must be called before Start.
func (s *Scheduler) Add(job Job) error {
	if job.Spec == "" {
		slog.Info("Job disabled", slog.String("type", "sys"), slog.String("job", job.Name))
		return nil
	}
	if _, err := s.cron.AddFunc(job.Spec, s.wrap(job)); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Spec, job.Name, err)
	}
	s.jobs = append(s.jobs, job.Name)
	return nil
}

func (s *Scheduler) wrap(job Job) func() {
	return func() {
		ctx := s.ctx
		if job.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, job.Timeout)
			defer cancel()
		}

		start := time.Now()
		err := job.Run(ctx)
		if s.recorder != nil {
			s.recorder.JobRan(job.Name, err)
		}
		if err != nil {
			slog.Error("Job failed",
				slog.String("type", "error"),
				slog.String("job", job.Name),
				slog.Duration("took", time.Since(start)),
				slog.Any("error", err),
			)
			return
		}
		slog.Debug("Job completed",
			slog.String("type", "sys"),
			slog.String("job", job.Name),
			slog.Duration("took", time.Since(start)),
		)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Job scheduler started", slog.String("type", "sys"), slog.Any("jobs", s.jobs))
}

// Stop stops scheduling new runs, waits for running jobs and then cancels
// the context jobs were given.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	slog.Info("Job scheduler stopped", slog.String("type", "sys"))
}

func (s *Scheduler) Jobs() []string {
	return append([]string(nil), s.jobs...)
}

// cronLogger routes robfig/cron's logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, append([]any{slog.String("type", "sys")}, keysAndValues...)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{slog.String("type", "error"), slog.Any("error", err)}, keysAndValues...)...)
}
