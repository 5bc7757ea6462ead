package summary

import (
	"github.com/shopspring/decimal"
)

// QueryRequest selects published buckets of one schema.
type QueryRequest struct {
	Schema     string `uri:"schema" binding:"required"`
	TimeScope  int    `form:"time_scope"`  // 0 = every scope
	ReportType string `form:"report_type"` // "" = every report
}

// Row is one published summary bucket. Nullable columns are JSON null.
type Row struct {
	TimeScope        int              `json:"time_scope"`
	ReportType       string           `json:"report_type"`
	UsageAccountID   string           `json:"usage_account_id"`
	ProductCode      string           `json:"product_code"`
	Region           *string          `json:"region"`
	AvailabilityZone *string          `json:"availability_zone"`
	UsageAmount      *decimal.Decimal `json:"usage_amount"`
	UnblendedCost    decimal.Decimal  `json:"unblended_cost"`
	ResourceCount    int64            `json:"resource_count"`
}

// QueryResponse is the body of GET /v1/summary/:schema.
type QueryResponse struct {
	Schema     string          `json:"schema"`
	TimeScope  int             `json:"time_scope,omitempty"`
	ReportType string          `json:"report_type,omitempty"`
	TotalCost  decimal.Decimal `json:"total_unblended_cost"`
	RowCount   int             `json:"row_count"`
	Rows       []Row           `json:"rows"`
}
