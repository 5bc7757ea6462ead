package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
	"github.com/lib/pq"
)

// SourceAdapter implements storage.Source over the ingestion-owned reporting tables.
// Reads run in a REPEATABLE READ, READ ONLY transaction so facts appended by
// ingestion mid-run are not observed.
type SourceAdapter struct {
	db *sql.DB
}

// NewSourceAdapter creates a SourceAdapter sharing the given connection pool.
func NewSourceAdapter(db *sql.DB) *SourceAdapter {
	return &SourceAdapter{db: db}
}

// Snapshot opens a read-only snapshot over schema.
func (a *SourceAdapter) Snapshot(ctx context.Context, schema string) (storage.SourceSnapshot, error) {
	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("source snapshot: begin tx: %w", err)
	}
	return &sourceSnapshot{tx: tx, schema: schema}, nil
}

type sourceSnapshot struct {
	tx     *sql.Tx
	schema string
}

func (s *sourceSnapshot) LineItems(ctx context.Context, start, end time.Time) ([]rollup.LineItem, error) {
	var upper sql.NullTime
	if !end.IsZero() {
		upper = sql.NullTime{Time: end, Valid: true}
	}

	rows, err := s.tx.QueryContext(ctx, lineItemsQuery(s.schema), start, upper)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []rollup.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	slog.Debug("[Postgres] Loaded line items",
		"schema", s.schema,
		"start", start.Format(time.DateOnly),
		"count", len(items))
	return items, nil
}

func (s *sourceSnapshot) Products(ctx context.Context, ids []int64) (map[int64]rollup.Product, error) {
	products := make(map[int64]rollup.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	rows, err := s.tx.QueryContext(ctx, productsQuery(s.schema), pq.Int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// Close ends the read-only transaction. Nothing was written, so rollback is the release.
func (s *sourceSnapshot) Close() error {
	if err := s.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("source snapshot: release: %w", err)
	}
	return nil
}
