package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
	"github.com/lib/pq"
)

// PublishMode selects how staged buckets replace the summary table.
type PublishMode string

const (
	// PublishAtomic stages, clears and inserts inside one transaction. Any
	// failure rolls back and the previous generation stays visible.
	PublishAtomic PublishMode = "atomic"

	// PublishSplit commits staging on its own, then clears and inserts as two
	// auto-committed statements. A failure between them yields ErrPartialPublish.
	PublishSplit PublishMode = "split"
)

// ValidPublishMode reports whether m names a supported mode.
func ValidPublishMode(m PublishMode) bool {
	return m == PublishAtomic || m == PublishSplit
}

// SummaryAdapter implements storage.SummaryStore for the published summary table.
type SummaryAdapter struct {
	db   *sql.DB
	mode PublishMode
}

// NewSummaryAdapter creates a SummaryAdapter sharing the given connection pool.
// An empty mode defaults to PublishAtomic.
func NewSummaryAdapter(db *sql.DB, mode PublishMode) *SummaryAdapter {
	if mode == "" {
		mode = PublishAtomic
	}
	return &SummaryAdapter{db: db, mode: mode}
}

// Stage copies buckets into a scratch table named after runID.
func (a *SummaryAdapter) Stage(ctx context.Context, schema, runID string, buckets []rollup.Bucket) (storage.Staging, error) {
	if a.mode == PublishSplit {
		return a.stageSplit(ctx, schema, runID, buckets)
	}
	return a.stageAtomic(ctx, schema, runID, buckets)
}

func (a *SummaryAdapter) stageAtomic(ctx context.Context, schema, runID string, buckets []rollup.Bucket) (storage.Staging, error) {
	table := stagingTableName(runID)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("summary stage: begin tx: %w", err)
	}

	// Lock first so two runs against one schema publish one after the other.
	if _, err := tx.ExecContext(ctx, queryAdvisoryXactLock, summaryLockKey(schema)); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("summary stage: acquire lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(createTempStagingTmpl, pq.QuoteIdentifier(table))); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("summary stage: create %s: %w", table, err)
	}

	if err := copyBuckets(ctx, tx, pq.CopyIn(table, summaryColumns...), buckets); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("summary stage: %w", err)
	}

	slog.Info("[SummaryAdapter] Staged buckets",
		"schema", schema,
		"run_id", runID,
		"staging_table", table,
		"buckets", len(buckets),
		"mode", PublishAtomic,
	)
	return &atomicStaging{tx: tx, schema: schema, table: table}, nil
}

type atomicStaging struct {
	tx     *sql.Tx
	schema string
	table  string
}

func (s *atomicStaging) Publish(ctx context.Context) (int64, error) {
	defer s.tx.Rollback() //nolint:errcheck

	if _, err := s.tx.ExecContext(ctx, deleteSummaryQuery(s.schema)); err != nil {
		return 0, fmt.Errorf("summary publish: clear: %w", err)
	}

	result, err := s.tx.ExecContext(ctx, publishSummaryQuery(s.schema, pq.QuoteIdentifier(s.table)))
	if err != nil {
		return 0, fmt.Errorf("summary publish: insert: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("summary publish: rows affected: %w", err)
	}

	// The temp staging table is dropped by ON COMMIT DROP.
	if err := s.tx.Commit(); err != nil {
		return 0, fmt.Errorf("summary publish: commit: %w", err)
	}

	slog.Info("[SummaryAdapter] Published summary",
		"schema", s.schema,
		"rows", inserted,
		"mode", PublishAtomic,
	)
	return inserted, nil
}

func (s *atomicStaging) Discard(_ context.Context) error {
	if err := s.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("summary discard: rollback: %w", err)
	}
	return nil
}

func (a *SummaryAdapter) stageSplit(ctx context.Context, schema, runID string, buckets []rollup.Bucket) (storage.Staging, error) {
	// Session advisory locks belong to one connection, so the whole run is
	// pinned to a dedicated conn.
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary stage: acquire conn: %w", err)
	}

	lockKey := summaryLockKey(schema)
	var locked bool
	if err := conn.QueryRowContext(ctx, queryTryAdvisoryLock, lockKey).Scan(&locked); err != nil {
		conn.Close()
		return nil, fmt.Errorf("summary stage: try lock: %w", err)
	}
	if !locked {
		conn.Close()
		return nil, storage.ErrRunInProgress
	}

	s := &splitStaging{
		conn:    conn,
		schema:  schema,
		ident:   qualify(schema, stagingTableName(runID)),
		lockKey: lockKey,
	}

	if err := s.load(ctx, stagingTableName(runID), buckets); err != nil {
		s.release()
		return nil, fmt.Errorf("summary stage: %w", err)
	}

	slog.Info("[SummaryAdapter] Staged buckets",
		"schema", schema,
		"run_id", runID,
		"staging_table", s.ident,
		"buckets", len(buckets),
		"mode", PublishSplit,
	)
	return s, nil
}

type splitStaging struct {
	conn    *sql.Conn
	schema  string
	ident   string
	lockKey string
}

func (s *splitStaging) load(ctx context.Context, table string, buckets []rollup.Bucket) error {
	if _, err := s.conn.ExecContext(ctx, fmt.Sprintf(createStagingTmpl, s.ident)); err != nil {
		return fmt.Errorf("create %s: %w", s.ident, err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := copyBuckets(ctx, tx, pq.CopyInSchema(s.schema, table, summaryColumns...), buckets); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *splitStaging) Publish(ctx context.Context) (int64, error) {
	defer s.release()

	if _, err := s.conn.ExecContext(ctx, deleteSummaryQuery(s.schema)); err != nil {
		// Nothing was removed; the previous generation is intact.
		return 0, fmt.Errorf("summary publish: clear: %w", err)
	}

	result, err := s.conn.ExecContext(ctx, publishSummaryQuery(s.schema, s.ident))
	if err != nil {
		return 0, fmt.Errorf("summary publish: insert after clear: %w: %w", storage.ErrPartialPublish, err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("summary publish: rows affected: %w", err)
	}

	slog.Info("[SummaryAdapter] Published summary",
		"schema", s.schema,
		"rows", inserted,
		"mode", PublishSplit,
	)
	return inserted, nil
}

func (s *splitStaging) Discard(ctx context.Context) error {
	s.release()
	return nil
}

// release drops the scratch table, unlocks and returns the conn to the pool.
// It runs on a fresh context so cleanup still happens after cancellation.
func (s *splitStaging) release() {
	ctx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()

	if _, err := s.conn.ExecContext(ctx, fmt.Sprintf(dropTableTmpl, s.ident)); err != nil {
		slog.Error("[SummaryAdapter] Failed to drop staging table", "table", s.ident, "error", err)
	}
	if _, err := s.conn.ExecContext(ctx, queryAdvisoryUnlock, s.lockKey); err != nil {
		slog.Error("[SummaryAdapter] Failed to release summary lock", "lock", s.lockKey, "error", err)
	}
	if err := s.conn.Close(); err != nil {
		slog.Error("[SummaryAdapter] Failed to return connection", "error", err)
	}
}

// Query returns published buckets for schema. A zero scope or empty report matches all.
func (a *SummaryAdapter) Query(ctx context.Context, schema string, scope rollup.TimeScope, report rollup.ReportType) ([]rollup.Bucket, error) {
	rows, err := a.db.QueryContext(ctx, summaryQuery(schema), int(scope), string(report))
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var buckets []rollup.Bucket
	for rows.Next() {
		b, err := scanBucket(rows)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return buckets, nil
}

type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// copyBuckets bulk-loads buckets with COPY FROM STDIN.
func copyBuckets(ctx context.Context, tx preparer, copyStmt string, buckets []rollup.Bucket) error {
	stmt, err := tx.PrepareContext(ctx, copyStmt)
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	defer stmt.Close()

	for _, b := range buckets {
		if _, err := stmt.ExecContext(ctx, bucketArgs(b)...); err != nil {
			return fmt.Errorf("copy bucket %d/%s: %w", b.TimeScope, b.ReportType, err)
		}
	}
	// An argument-less Exec flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush copy: %w", err)
	}
	return nil
}
