package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// errTaskExited is reported when a task returns nil while its cycle is
// still running. Services are expected to run until cancelled.
var errTaskExited = errors.New("supervisor: task exited")

// Task is one long-running component of a cycle.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// BuildFunc creates fresh tasks for a cycle. Nothing may be shared with
// tasks of an earlier cycle.
type BuildFunc func(cycle int) ([]Task, error)

// Policy controls restart pacing.
type Policy struct {
	InitialDelay time.Duration // first backoff delay (default 1s)
	MaxDelay     time.Duration // backoff cap (default 30s)
	// MaxRestarts bounds consecutive restarts; 0 retries forever.
	MaxRestarts int
	// HealthyAfter is how long a cycle must run before its failure no
	// longer counts as consecutive (default 30s).
	HealthyAfter time.Duration
}

// DefaultPolicy returns the default restart policy.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		HealthyAfter: 30 * time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.InitialDelay <= 0 {
		p.InitialDelay = d.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.HealthyAfter <= 0 {
		p.HealthyAfter = d.HealthyAfter
	}
	return p
}

// Backoff returns the delay before restart number attempt (1-based):
// InitialDelay * 2^(attempt-1), capped at MaxDelay.
func Backoff(attempt int, p Policy) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(delay, p.MaxDelay)
}

// Supervisor runs cycles of tasks. When any task of a cycle fails or
// exits, the whole cycle is torn down and rebuilt after a backoff.
type Supervisor struct {
	build  BuildFunc
	policy Policy
	log    *slog.Logger

	cycles   atomic.Int64
	restarts atomic.Int64
}

func New(build BuildFunc, policy Policy, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{build: build, policy: policy.withDefaults(), log: logger}
}

// Run keeps cycles running until ctx is cancelled (returns nil) or
// MaxRestarts consecutive restarts have failed (returns the last error).
func (s *Supervisor) Run(ctx context.Context) error {
	failures := 0
	for cycle := 1; ; cycle++ {
		started := time.Now()
		s.cycles.Store(int64(cycle))

		err := s.runCycle(ctx, cycle)
		if ctx.Err() != nil {
			s.log.Info("supervisor: stopped", "cycle", cycle)
			return nil
		}

		if time.Since(started) >= s.policy.HealthyAfter {
			failures = 0
		}
		failures++
		if s.policy.MaxRestarts > 0 && failures > s.policy.MaxRestarts {
			s.log.Error("supervisor: giving up", "cycle", cycle, "failures", failures, "error", err)
			return fmt.Errorf("supervisor: %d consecutive failures: %w", failures, err)
		}

		delay := Backoff(failures, s.policy)
		s.log.Warn("supervisor: cycle failed, restarting",
			"cycle", cycle,
			"error", err,
			"attempt", failures,
			"delay", delay,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("supervisor: stopped during backoff", "cycle", cycle)
			return nil
		case <-timer.C:
		}
		s.restarts.Add(1)
	}
}

func (s *Supervisor) runCycle(ctx context.Context, cycle int) error {
	tasks, err := s.build(cycle)
	if err != nil {
		return fmt.Errorf("build cycle: %w", err)
	}
	if len(tasks) == 0 {
		return fmt.Errorf("build cycle: no tasks")
	}

	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	s.log.Info("supervisor: starting cycle", "cycle", cycle, "tasks", names)

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error { return runTask(gctx, t) })
	}
	return g.Wait()
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", t.Name, r)
		}
	}()
	if err := t.Run(ctx); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	if ctx.Err() == nil {
		return fmt.Errorf("%w: %s", errTaskExited, t.Name)
	}
	return nil
}

// Cycle returns the index of the current cycle.
func (s *Supervisor) Cycle() int {
	return int(s.cycles.Load())
}

// Restarts returns how many times a cycle has been rebuilt.
func (s *Supervisor) Restarts() int {
	return int(s.restarts.Load())
}
