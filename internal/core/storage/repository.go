package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
)

var (
	// ErrPartialPublish means the summary table was cleared but not fully
	// repopulated. Readers may observe an empty or partial summary until the
	// next successful run.
	ErrPartialPublish = errors.New("summary publish left table partially populated")

	// ErrRunInProgress is returned when another run holds the summary table lock.
	ErrRunInProgress = errors.New("another rollup run holds the summary lock")
)

// SourceSnapshot is a consistent read view over the fact and dimension tables.
// All reads through one snapshot observe the same committed state.
type SourceSnapshot interface {
	// LineItems returns facts with usage date in [start, end). A zero end
	// leaves the range open.
	LineItems(ctx context.Context, start, end time.Time) ([]rollup.LineItem, error)

	// Products resolves dimension rows by id. Unknown ids are absent from the map.
	Products(ctx context.Context, ids []int64) (map[int64]rollup.Product, error)

	// Close releases the snapshot.
	Close() error
}

// Source opens read snapshots for one tenant schema.
type Source interface {
	Snapshot(ctx context.Context, schema string) (SourceSnapshot, error)
}

// Staging is a run-scoped scratch copy of the new bucket set.
// Exactly one of Publish or Discard must be called.
type Staging interface {
	// Publish replaces the summary table with the staged rows and returns
	// the number of rows published.
	Publish(ctx context.Context) (int64, error)

	// Discard drops the staged rows without touching the summary table.
	Discard(ctx context.Context) error
}

// SummaryStore owns the published summary table.
type SummaryStore interface {
	// Stage writes buckets into a scratch area named after runID.
	Stage(ctx context.Context, schema, runID string, buckets []rollup.Bucket) (Staging, error)

	// Query returns published buckets, optionally filtered by time scope and
	// report type (zero values match everything).
	Query(ctx context.Context, schema string, scope rollup.TimeScope, report rollup.ReportType) ([]rollup.Bucket, error)
}
