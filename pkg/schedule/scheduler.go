package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron schedule. Runs never overlap: a scheduled
// run that fires while the job is still busy is skipped.
type Scheduler struct {
	spec   string
	name   string
	job    Job
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	runMu   sync.Mutex
}

// NewScheduler creates a scheduler for job. spec is a standard five-field
// cron expression; an empty spec disables scheduling but RunNow still works.
func NewScheduler(spec, name string, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "schedule", "job", name)

	return &Scheduler{
		spec:   spec,
		name:   name,
		job:    job,
		logger: logger,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger}))),
	}
}

// Start begins running the job on schedule until ctx is cancelled or Stop
// is called.
//
// Common cron expressions:
//   - "0 6 * * *"    - Daily at 6 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 7 * * 1"    - Weekly on Monday at 7 AM
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec == "" {
		s.logger.Info("schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.spec, err)
	}

	if len(s.cron.Entries()) == 0 {
		if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx, "schedule") }); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", s.name, err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started", "schedule", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow runs the job immediately, waiting for any run in progress first.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.run(ctx, "manual")
}

func (s *Scheduler) run(ctx context.Context, trigger string) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	s.logger.Info("job started", "trigger", trigger)

	err := s.job(ctx)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("job failed",
			"trigger", trigger,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return err
	}

	s.logger.Info("job completed",
		"trigger", trigger,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

// Stop stops the scheduler and waits for any running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		done := s.cron.Stop()
		<-done.Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run, or nil when not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
