package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background maintenance work.
type Job func(ctx context.Context) error

type entry struct {
	id      cron.EntryID
	timeout time.Duration
	job     Job
}

// Scheduler runs maintenance jobs on cron schedules. Descriptors such as
// "@hourly" and "@every 10m" are accepted alongside five-field specs.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger

	mu   sync.Mutex
	jobs map[string]entry
}

func New(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		log:  log,
		jobs: map[string]entry{},
	}
}

// Add registers job under name. Overlapping runs of the same job are skipped.
func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}

	var running sync.Mutex
	id, err := s.cron.AddFunc(spec, func() {
		if !running.TryLock() {
			s.log.Warn("job still running, skipping", "job", name)
			return
		}
		defer running.Unlock()
		_ = s.run(context.Background(), name, timeout, job)
	})
	if err != nil {
		return fmt.Errorf("scheduling %q: %w", name, err)
	}
	s.jobs[name] = entry{id: id, timeout: timeout, job: job}
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, timeout time.Duration, job Job) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error("job failed", "job", name, "error", err)
		return err
	}
	s.log.Debug("job finished", "job", name, "took", time.Since(start))
	return nil
}

// RunNow executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.run(ctx, name, e.timeout, e.job)
}

// Next returns when name is due next; zero before Start.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(e.id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
