// Package scheduler runs named background checks on fixed intervals.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Check is one run of a job. It should return promptly once ctx is done.
type Check func(ctx context.Context) error

// Result is the outcome of a job's most recent run.
type Result struct {
	Healthy   bool
	Message   string
	Duration  time.Duration
	CheckedAt time.Time
}

type Scheduler struct {
	jobs   map[string]*job
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
	wg     sync.WaitGroup
}

type job struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	check    Check
	cancel   context.CancelFunc
	last     *Result
}

func NewScheduler(logger *log.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// AddJob starts running check every interval, beginning immediately. Adding
// a job under an existing name replaces it.
func (s *Scheduler) AddJob(name string, interval, timeout time.Duration, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)

	j := &job{
		name:     name,
		interval: interval,
		timeout:  timeout,
		check:    check,
		cancel:   jobCancel,
	}

	s.jobs[name] = j

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.run(jobCtx, j)
	}()

	s.logger.Debug("added job", "job", name, "interval", interval)
}

func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[name]; ok {
		j.cancel()
		delete(s.jobs, name)
	}
}

// Stop cancels every job and waits for running checks to return.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	s.wg.Wait()
}

// Status returns the latest result of the named job.
func (s *Scheduler) Status(name string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[name]

	if !ok || j.last == nil {
		return Result{}, false
	}

	return *j.last, true
}

func (s *Scheduler) run(ctx context.Context, j *job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.execute(ctx, j)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	checkCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	err := j.check(checkCtx)

	if ctx.Err() != nil {
		return
	}

	result := Result{
		Healthy:   err == nil,
		Duration:  time.Since(start),
		CheckedAt: start,
	}

	if err != nil {
		result.Message = err.Error()
	}

	s.mu.Lock()
	previous := j.last
	j.last = &result
	s.mu.Unlock()

	switch {
	case err != nil && (previous == nil || previous.Healthy):
		s.logger.Error("check failed", "job", j.name, "err", err)
	case err == nil && previous != nil && !previous.Healthy:
		s.logger.Info("check recovered", "job", j.name, "duration", result.Duration)
	default:
		s.logger.Debug("check finished", "job", j.name, "healthy", result.Healthy, "duration", result.Duration)
	}
}
