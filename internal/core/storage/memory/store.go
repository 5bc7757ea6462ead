package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
)

// Store is an in-process storage.Source and storage.SummaryStore.
// Publishing swaps the whole bucket slice of a schema under the write lock, so
// readers see either the previous generation or the new one.
type Store struct {
	mu         sync.RWMutex
	lineItems  map[string][]rollup.LineItem
	products   map[string]map[int64]rollup.Product
	summary    map[string][]rollup.Bucket
	staged     map[string]struct{}
	publishing map[string]bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		lineItems:  make(map[string][]rollup.LineItem),
		products:   make(map[string]map[int64]rollup.Product),
		summary:    make(map[string][]rollup.Bucket),
		staged:     make(map[string]struct{}),
		publishing: make(map[string]bool),
	}
}

// AddLineItems appends facts to schema.
func (s *Store) AddLineItems(schema string, items ...rollup.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lineItems[schema] = append(s.lineItems[schema], items...)
}

// AddProducts inserts or replaces dimension rows in schema.
func (s *Store) AddProducts(schema string, products ...rollup.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.products[schema]
	if !ok {
		byID = make(map[int64]rollup.Product)
		s.products[schema] = byID
	}
	for _, p := range products {
		byID[p.ID] = p
	}
}

// Schemas lists schemas that have source rows, sorted.
func (s *Store) Schemas() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for schema := range s.lineItems {
		seen[schema] = struct{}{}
	}
	for schema := range s.products {
		seen[schema] = struct{}{}
	}
	schemas := make([]string, 0, len(seen))
	for schema := range seen {
		schemas = append(schemas, schema)
	}
	sort.Strings(schemas)
	return schemas
}

// StagedCount returns the number of staging sets not yet published or discarded.
func (s *Store) StagedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staged)
}

// Snapshot copies the schema's rows at call time. Later writes are not observed.
func (s *Store) Snapshot(ctx context.Context, schema string) (storage.SourceSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]rollup.LineItem, len(s.lineItems[schema]))
	copy(items, s.lineItems[schema])
	products := make(map[int64]rollup.Product, len(s.products[schema]))
	for id, p := range s.products[schema] {
		products[id] = p
	}
	return &snapshot{items: items, products: products}, nil
}

type snapshot struct {
	items    []rollup.LineItem
	products map[int64]rollup.Product
}

func (sn *snapshot) LineItems(ctx context.Context, start, end time.Time) ([]rollup.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds := rollup.Window{Start: rollup.DateOf(start)}
	if !end.IsZero() {
		bounds.End = rollup.DateOf(end)
	}

	var out []rollup.LineItem
	for _, item := range sn.items {
		if bounds.Contains(item.UsageDate) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (sn *snapshot) Products(ctx context.Context, ids []int64) (map[int64]rollup.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[int64]rollup.Product, len(ids))
	for _, id := range ids {
		if p, ok := sn.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (sn *snapshot) Close() error { return nil }

// Stage keeps a private copy of buckets until Publish or Discard.
func (s *Store) Stage(ctx context.Context, schema, runID string, buckets []rollup.Bucket) (storage.Staging, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publishing[schema] {
		return nil, storage.ErrRunInProgress
	}
	if _, ok := s.staged[runID]; ok {
		return nil, fmt.Errorf("staging set for run %s already exists", runID)
	}
	s.publishing[schema] = true
	s.staged[runID] = struct{}{}

	rows := make([]rollup.Bucket, len(buckets))
	copy(rows, buckets)

	slog.Debug("[MemoryStore] Staged buckets", "schema", schema, "run_id", runID, "buckets", len(rows))
	return &staging{store: s, schema: schema, runID: runID, rows: rows}, nil
}

type staging struct {
	store  *Store
	schema string
	runID  string
	rows   []rollup.Bucket
	done   bool
}

func (st *staging) Publish(ctx context.Context) (int64, error) {
	s := st.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.done {
		return 0, fmt.Errorf("staging set for run %s already released", st.runID)
	}
	defer st.release()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.summary[st.schema] = st.rows
	return int64(len(st.rows)), nil
}

func (st *staging) Discard(_ context.Context) error {
	s := st.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if !st.done {
		st.release()
	}
	return nil
}

// release must be called with the store lock held.
func (st *staging) release() {
	delete(st.store.staged, st.runID)
	delete(st.store.publishing, st.schema)
	st.done = true
}

// Query returns published buckets ordered like the Postgres summary query.
func (s *Store) Query(ctx context.Context, schema string, scope rollup.TimeScope, report rollup.ReportType) ([]rollup.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []rollup.Bucket
	for _, b := range s.summary[schema] {
		if scope != 0 && b.TimeScope != scope {
			continue
		}
		if report != "" && b.ReportType != report {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TimeScope != b.TimeScope {
			return a.TimeScope < b.TimeScope
		}
		if a.ReportType != b.ReportType {
			return a.ReportType < b.ReportType
		}
		if a.Key.UsageAccountID != b.Key.UsageAccountID {
			return a.Key.UsageAccountID < b.Key.UsageAccountID
		}
		return a.Key.ProductCode < b.Key.ProductCode
	})
	return out, nil
}
