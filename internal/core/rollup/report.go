package rollup

import (
	"fmt"
	"strings"
)

// ReportType selects the dimension filter applied before aggregation.
type ReportType string

const (
	ReportCosts        ReportType = "costs"
	ReportInstanceType ReportType = "instance_type"
	ReportStorage      ReportType = "storage"
)

// ReportTypes lists every report profile, in publish order.
var ReportTypes = []ReportType{ReportCosts, ReportInstanceType, ReportStorage}

// storageFamilyMarker is matched case-sensitively against product_family.
const storageFamilyMarker = "Storage"

// ParseReportType validates a report type name.
func ParseReportType(s string) (ReportType, error) {
	for _, r := range ReportTypes {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// Matches reports whether a fact whose dimension resolved to p belongs to the report.
func (r ReportType) Matches(p Product) bool {
	switch r {
	case ReportCosts:
		return true
	case ReportInstanceType:
		return p.InstanceType.Valid
	case ReportStorage:
		return p.ProductFamily.Valid && strings.Contains(p.ProductFamily.String, storageFamilyMarker)
	default:
		return false
	}
}

// TracksUsage reports whether buckets of this report carry a usage_amount.
func (r ReportType) TracksUsage() bool {
	return r == ReportInstanceType || r == ReportStorage
}
