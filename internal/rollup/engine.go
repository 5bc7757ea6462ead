package rollup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultWorkerCount = 4

// Options controls how a run computes and publishes.
type Options struct {
	// WorkerCount bounds how many combinations aggregate at once.
	WorkerCount int
	// AllowEmptySource publishes an empty summary instead of failing when the
	// scanned range holds no facts.
	AllowEmptySource bool
	// Timeout bounds one schema run; zero disables it.
	Timeout time.Duration
}

func (o Options) normalized() Options {
	n := o
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	return n
}

// CombinationResult is the bucket count of one (time scope, report type) pair.
type CombinationResult struct {
	TimeScope  rollup.TimeScope  `json:"time_scope"`
	ReportType rollup.ReportType `json:"report_type"`
	Window     string            `json:"window"`
	Buckets    int               `json:"buckets"`
}

// RunResult describes one successful run.
type RunResult struct {
	RunID          string              `json:"run_id"`
	Schema         string              `json:"schema"`
	Today          string              `json:"today"`
	ScannedItems   int                 `json:"scanned_items"`
	UnmatchedItems int                 `json:"unmatched_items"`
	Combinations   []CombinationResult `json:"combinations"`
	Published      int64               `json:"published"`
	StartedAt      time.Time           `json:"started_at"`
	Duration       time.Duration       `json:"duration_ns"`
}

func (r *RunResult) bucketsByReport() map[string]int {
	out := make(map[string]int, len(rollup.ReportTypes))
	for _, c := range r.Combinations {
		out[string(c.ReportType)] += c.Buckets
	}
	return out
}

// Engine recomputes and republishes the cost summary of a schema.
type Engine struct {
	source  storage.Source
	summary storage.SummaryStore
	opts    Options
	metrics *Metrics

	nowFn   func() time.Time
	runIDFn func() string
}

// NewEngine creates an Engine. metrics may be nil.
func NewEngine(source storage.Source, summary storage.SummaryStore, opts Options, metrics *Metrics) *Engine {
	return &Engine{
		source:  source,
		summary: summary,
		opts:    opts.normalized(),
		metrics: metrics,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
		runIDFn: uuid.NewString,
	}
}

// Run executes join, aggregate and publish for schema. Compute finishes
// completely before anything is staged. Every failure is a *StageError.
func (e *Engine) Run(ctx context.Context, schema string) (*RunResult, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	startedAt := e.nowFn()
	res := &RunResult{
		RunID:     e.runIDFn(),
		Schema:    schema,
		StartedAt: startedAt,
	}
	// Captured once so every window in the run shares the same boundaries.
	today := rollup.DateOf(startedAt)
	res.Today = today.Format(time.DateOnly)

	fail := func(stage Stage, err error) (*RunResult, error) {
		elapsed := e.nowFn().Sub(startedAt)
		e.metrics.observeFailure(schema, stage, elapsed)
		slog.Error("[Engine] Rollup failed",
			"schema", schema,
			"run_id", res.RunID,
			"stage", stage,
			"error", err,
		)
		return nil, &StageError{Stage: stage, Schema: schema, RunID: res.RunID, Err: err}
	}

	slog.Info("[Engine] Starting rollup",
		"schema", schema,
		"run_id", res.RunID,
		"today", res.Today,
		"workers", e.opts.WorkerCount,
	)

	joined, err := e.join(ctx, schema, today, res)
	if err != nil {
		return fail(StageJoin, err)
	}

	buckets, err := e.aggregate(ctx, today, joined, res)
	if err != nil {
		return fail(StageAggregate, err)
	}

	published, err := e.publish(ctx, schema, res.RunID, buckets)
	if err != nil {
		return fail(StagePublish, err)
	}
	res.Published = published
	res.Duration = e.nowFn().Sub(startedAt)

	e.metrics.observeSuccess(res)
	slog.Info("[Engine] Rollup complete",
		"schema", schema,
		"run_id", res.RunID,
		"buckets", published,
		"scanned_items", res.ScannedItems,
		"unmatched_items", res.UnmatchedItems,
		"duration", res.Duration,
	)
	return res, nil
}

// join reads the facts covering every window plus their products from one
// snapshot and inner-joins them.
func (e *Engine) join(ctx context.Context, schema string, today time.Time, res *RunResult) ([]rollup.JoinedItem, error) {
	snap, err := e.source.Snapshot(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	defer func() {
		if err := snap.Close(); err != nil {
			slog.Warn("[Engine] Failed to release source snapshot", "schema", schema, "error", err)
		}
	}()

	start, end := rollup.ScanRange(rollup.Windows(today))
	items, err := snap.LineItems(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: line items: %w", ErrInputUnavailable, err)
	}
	res.ScannedItems = len(items)

	if len(items) == 0 {
		if !e.opts.AllowEmptySource {
			return nil, fmt.Errorf("%w: no line items since %s", ErrInputUnavailable, start.Format(time.DateOnly))
		}
		slog.Warn("[Engine] Source is empty, publishing an empty summary",
			"schema", schema,
			"since", start.Format(time.DateOnly),
		)
		return nil, nil
	}

	products, err := snap.Products(ctx, rollup.ProductIDs(items))
	if err != nil {
		return nil, fmt.Errorf("%w: products: %w", ErrInputUnavailable, err)
	}
	if len(products) == 0 {
		if !e.opts.AllowEmptySource {
			return nil, fmt.Errorf("%w: no products for %d line items", ErrInputUnavailable, len(items))
		}
		slog.Warn("[Engine] Dimension source is empty, publishing an empty summary",
			"schema", schema,
			"line_items", len(items),
		)
	}

	joined, dropped := rollup.Join(items, products)
	res.UnmatchedItems = dropped
	if dropped > 0 {
		slog.Debug("[Engine] Dropped line items without a product",
			"schema", schema,
			"dropped", dropped,
		)
	}
	return joined, nil
}

// aggregate evaluates every combination concurrently and returns the union
// in plan order.
func (e *Engine) aggregate(ctx context.Context, today time.Time, items []rollup.JoinedItem, res *RunResult) ([]rollup.Bucket, error) {
	plan := rollup.Plan(today)
	results := make([][]rollup.Bucket, len(plan))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.WorkerCount)

	for i, c := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buckets, err := rollup.Aggregate(c, items)
			if err != nil {
				if errors.Is(err, rollup.ErrOverflow) {
					return fmt.Errorf("%w: %w", ErrComputation, err)
				}
				return err
			}
			results[i] = buckets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []rollup.Bucket
	res.Combinations = make([]CombinationResult, 0, len(plan))
	for i, c := range plan {
		all = append(all, results[i]...)
		res.Combinations = append(res.Combinations, CombinationResult{
			TimeScope:  c.Window.Scope,
			ReportType: c.Report,
			Window:     c.Window.String(),
			Buckets:    len(results[i]),
		})
		slog.Debug("[Engine] Combination aggregated",
			"time_scope", c.Window.Scope,
			"report_type", c.Report,
			"window", c.Window.String(),
			"buckets", len(results[i]),
		)
	}
	return all, nil
}

// publish stages the bucket set and swaps it in. A failed Publish releases
// its own staging; Discard is only needed when publishing is never attempted.
func (e *Engine) publish(ctx context.Context, schema, runID string, buckets []rollup.Bucket) (int64, error) {
	staging, err := e.summary.Stage(ctx, schema, runID, buckets)
	if err != nil {
		return 0, fmt.Errorf("stage: %w", err)
	}

	if err := ctx.Err(); err != nil {
		if discardErr := staging.Discard(context.WithoutCancel(ctx)); discardErr != nil {
			slog.Error("[Engine] Failed to discard staging", "schema", schema, "run_id", runID, "error", discardErr)
		}
		return 0, err
	}

	published, err := staging.Publish(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrPartialPublish) {
			slog.Error("[Engine] Summary table left partially populated until the next successful run",
				"schema", schema,
				"run_id", runID,
				"staged_buckets", len(buckets),
			)
		}
		return 0, err
	}
	return published, nil
}

// RunAll runs every schema with at most maxParallel runs in flight. A failing
// schema does not stop the others; the joined error lists every failure.
func (e *Engine) RunAll(ctx context.Context, schemas []string, maxParallel int) ([]*RunResult, error) {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	var (
		mu      sync.Mutex
		results = make([]*RunResult, len(schemas))
		errs    []error
	)

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, schema := range schemas {
		g.Go(func() error {
			res, err := e.Run(ctx, schema)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
