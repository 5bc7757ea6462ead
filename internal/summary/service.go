package summary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid summary query")

	// ErrUnknownSchema marks schemas that are not configured for rollups.
	ErrUnknownSchema = errors.New("unknown schema")
)

// Service is the read path over the published summary table.
type Service struct {
	store   storage.SummaryStore
	schemas map[string]bool
}

// NewService creates a Service answering for the configured schemas only.
func NewService(store storage.SummaryStore, schemas []string) *Service {
	allowed := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		allowed[s] = true
	}
	return &Service{store: store, schemas: allowed}
}

// Query returns the published buckets matching req.
func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if !s.schemas[req.Schema] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, req.Schema)
	}

	scope := rollup.TimeScope(req.TimeScope)
	if scope != 0 && !rollup.ValidTimeScope(scope) {
		return nil, fmt.Errorf("%w: time_scope %d (must be -30, -10, -1 or -2)", ErrInvalidQuery, req.TimeScope)
	}

	var report rollup.ReportType
	if req.ReportType != "" {
		r, err := rollup.ParseReportType(req.ReportType)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		report = r
	}

	buckets, err := s.store.Query(ctx, req.Schema, scope, report)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}

	resp := &QueryResponse{
		Schema:     req.Schema,
		TimeScope:  req.TimeScope,
		ReportType: req.ReportType,
		TotalCost:  decimal.Zero,
		RowCount:   len(buckets),
		Rows:       make([]Row, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.TotalCost = resp.TotalCost.Add(b.UnblendedCost)
		resp.Rows = append(resp.Rows, toRow(b))
	}
	return resp, nil
}

func toRow(b rollup.Bucket) Row {
	row := Row{
		TimeScope:        int(b.TimeScope),
		ReportType:       string(b.ReportType),
		UsageAccountID:   b.Key.UsageAccountID,
		ProductCode:      b.Key.ProductCode,
		Region:           stringPtr(b.Key.Region),
		AvailabilityZone: stringPtr(b.Key.AvailabilityZone),
		UnblendedCost:    b.UnblendedCost,
		ResourceCount:    b.ResourceCount,
	}
	if b.UsageAmount.Valid {
		usage := b.UsageAmount.Decimal
		row.UsageAmount = &usage
	}
	return row
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
