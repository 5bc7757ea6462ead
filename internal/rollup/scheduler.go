package rollup

import (
	"context"
	"log/slog"
	"time"
)

// Runner is the part of Engine the scheduler and HTTP trigger depend on.
type Runner interface {
	Run(ctx context.Context, schema string) (*RunResult, error)
	RunAll(ctx context.Context, schemas []string, maxParallel int) ([]*RunResult, error)
}

// Scheduler reruns the rollup for every configured schema on a fixed interval.
// Each tick recomputes from scratch, so a missed tick needs no catch-up.
type Scheduler struct {
	interval    time.Duration
	runner      Runner
	schemas     []string
	maxParallel int
}

// NewScheduler creates a scheduler over schemas.
func NewScheduler(interval time.Duration, runner Runner, schemas []string, maxParallel int) *Scheduler {
	return &Scheduler{
		interval:    interval,
		runner:      runner,
		schemas:     schemas,
		maxParallel: maxParallel,
	}
}

// Start runs once immediately, then on every tick until ctx is cancelled.
// A run in flight at shutdown is cancelled with ctx; no final run is started.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting rollup scheduler",
		"interval", s.interval,
		"schemas", s.schemas,
		"max_parallel_schemas", s.maxParallel,
	)

	s.tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	results, err := s.runner.RunAll(ctx, s.schemas, s.maxParallel)

	succeeded := 0
	for _, res := range results {
		if res != nil {
			succeeded++
		}
	}

	if err != nil {
		// Per-schema failures were already logged by the engine.
		slog.Warn("[Scheduler] Rollup tick finished with failures",
			"succeeded", succeeded,
			"failed", len(s.schemas)-succeeded,
			"elapsed", time.Since(started),
		)
		return
	}
	slog.Info("[Scheduler] Rollup tick complete",
		"schemas", succeeded,
		"elapsed", time.Since(started),
	)
}
