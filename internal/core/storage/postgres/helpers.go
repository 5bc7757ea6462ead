package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/shopspring/decimal"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanLineItem scans one fact row. A NULL unblended_cost is read as zero and a
// NULL product id as 0, which never matches a dimension row.
func scanLineItem(row scanner) (rollup.LineItem, error) {
	var (
		item       rollup.LineItem
		usageStart time.Time
		resourceID sql.NullString
		usageStr   sql.NullString
		costStr    sql.NullString
		productID  sql.NullInt64
	)

	if err := row.Scan(
		&usageStart,
		&item.UsageAccountID,
		&item.ProductCode,
		&resourceID,
		&item.AvailabilityZone,
		&usageStr,
		&costStr,
		&productID,
	); err != nil {
		return rollup.LineItem{}, fmt.Errorf("failed to scan line item row: %w", err)
	}

	usage, err := rollup.ParseNullDecimal(usageStr)
	if err != nil {
		return rollup.LineItem{}, fmt.Errorf("line item usage_amount: %w", err)
	}
	cost, err := rollup.ParseNullDecimal(costStr)
	if err != nil {
		return rollup.LineItem{}, fmt.Errorf("line item unblended_cost: %w", err)
	}

	item.UsageDate = rollup.DateOf(usageStart)
	item.ResourceID = resourceID.String
	item.UsageAmount = usage
	item.UnblendedCost = cost.Decimal
	item.ProductID = rollup.NoProduct
	if productID.Valid {
		item.ProductID = productID.Int64
	}
	return item, nil
}

func scanProduct(row scanner) (rollup.Product, error) {
	var p rollup.Product
	if err := row.Scan(&p.ID, &p.Region, &p.InstanceType, &p.ProductFamily); err != nil {
		return rollup.Product{}, fmt.Errorf("failed to scan product row: %w", err)
	}
	return p, nil
}

func scanBucket(row scanner) (rollup.Bucket, error) {
	var (
		b          rollup.Bucket
		scope      int
		reportType string
		usageStr   sql.NullString
		costStr    string
	)
	if err := row.Scan(
		&scope,
		&reportType,
		&b.Key.UsageAccountID,
		&b.Key.ProductCode,
		&b.Key.Region,
		&b.Key.AvailabilityZone,
		&usageStr,
		&costStr,
		&b.ResourceCount,
	); err != nil {
		return rollup.Bucket{}, fmt.Errorf("failed to scan summary row: %w", err)
	}

	usage, err := rollup.ParseNullDecimal(usageStr)
	if err != nil {
		return rollup.Bucket{}, fmt.Errorf("summary usage_amount: %w", err)
	}
	cost, err := decimal.NewFromString(costStr)
	if err != nil {
		return rollup.Bucket{}, fmt.Errorf("summary unblended_cost %q: %w", costStr, err)
	}

	b.TimeScope = rollup.TimeScope(scope)
	b.ReportType = rollup.ReportType(reportType)
	b.UsageAmount = usage
	b.UnblendedCost = cost
	return b, nil
}

// bucketArgs orders a bucket's values like summaryColumns.
func bucketArgs(b rollup.Bucket) []interface{} {
	return []interface{}{
		int(b.TimeScope),
		string(b.ReportType),
		b.Key.UsageAccountID,
		b.Key.ProductCode,
		b.Key.Region,
		b.Key.AvailabilityZone,
		b.UsageAmount,
		b.UnblendedCost,
		b.ResourceCount,
	}
}
