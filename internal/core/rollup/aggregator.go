package rollup

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Combination is one (window, report type) pair evaluated by a run.
type Combination struct {
	Window Window
	Report ReportType
}

func (c Combination) String() string {
	return fmt.Sprintf("%d/%s", c.Window.Scope, c.Report)
}

// Plan crosses every window resolved against today with every report type.
func Plan(today time.Time) []Combination {
	windows := Windows(today)
	plan := make([]Combination, 0, len(windows)*len(ReportTypes))
	for _, w := range windows {
		for _, r := range ReportTypes {
			plan = append(plan, Combination{Window: w, Report: r})
		}
	}
	return plan
}

type accumulator struct {
	cost      decimal.Decimal
	usage     decimal.NullDecimal
	resources map[string]struct{}
}

// Aggregate filters items through the combination's window and report
// predicate, groups them by GroupKey and reduces each group into a Bucket.
// Buckets come back in first-seen key order.
func Aggregate(c Combination, items []JoinedItem) ([]Bucket, error) {
	groups := make(map[GroupKey]*accumulator)
	var order []GroupKey

	for _, item := range items {
		if !c.Window.Contains(item.UsageDate) || !c.Report.Matches(item.Product) {
			continue
		}

		key := GroupKey{
			UsageAccountID:   item.UsageAccountID,
			ProductCode:      item.ProductCode,
			Region:           item.Product.Region,
			AvailabilityZone: item.AvailabilityZone,
		}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{resources: make(map[string]struct{})}
			groups[key] = acc
			order = append(order, key)
		}

		acc.cost = acc.cost.Add(item.UnblendedCost)
		if c.Report.TracksUsage() {
			acc.usage = AddNull(acc.usage, item.UsageAmount)
		}
		// NULL and '' resource ids both read as "" and are left out of the count.
		if item.ResourceID != "" {
			acc.resources[item.ResourceID] = struct{}{}
		}
	}

	buckets := make([]Bucket, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		if err := CheckPrecision(acc.cost); err != nil {
			return nil, fmt.Errorf("%s unblended_cost for %s/%s: %w", c, key.UsageAccountID, key.ProductCode, err)
		}
		if acc.usage.Valid {
			if err := CheckPrecision(acc.usage.Decimal); err != nil {
				return nil, fmt.Errorf("%s usage_amount for %s/%s: %w", c, key.UsageAccountID, key.ProductCode, err)
			}
		}

		buckets = append(buckets, Bucket{
			TimeScope:     c.Window.Scope,
			ReportType:    c.Report,
			Key:           key,
			UsageAmount:   acc.usage,
			UnblendedCost: acc.cost,
			ResourceCount: int64(len(acc.resources)),
		})
	}
	return buckets, nil
}
