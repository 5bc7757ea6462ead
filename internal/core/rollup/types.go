package rollup

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one daily cost-and-usage fact for a single resource.
type LineItem struct {
	UsageDate        time.Time
	UsageAccountID   string
	ProductCode      string
	ResourceID       string // empty when the export carried no resource id
	AvailabilityZone sql.NullString
	UsageAmount      decimal.NullDecimal
	UnblendedCost    decimal.Decimal
	ProductID        int64 // foreign key into the product dimension; NoProduct when NULL
}

// NoProduct is the ProductID of a line item whose product foreign key is NULL.
// Such items never join, even against a product row with id 0.
const NoProduct int64 = 0

// Product is the priced product/SKU dimension a line item points at.
type Product struct {
	ID            int64
	Region        sql.NullString
	InstanceType  sql.NullString
	ProductFamily sql.NullString
}

// JoinedItem is a line item with its product dimension resolved.
type JoinedItem struct {
	LineItem
	Product Product
}

// GroupKey is the grouping tuple of a summary bucket.
// NULL region / availability zone are distinct values, never collapsed into "".
type GroupKey struct {
	UsageAccountID   string
	ProductCode      string
	Region           sql.NullString
	AvailabilityZone sql.NullString
}

// Bucket is one row of the published summary table.
type Bucket struct {
	TimeScope     TimeScope
	ReportType    ReportType
	Key           GroupKey
	UsageAmount   decimal.NullDecimal // always NULL for the costs report
	UnblendedCost decimal.Decimal
	ResourceCount int64
}
