package rollup

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Summary amounts are stored as numeric(24,9).
const (
	SummaryPrecision = 24
	SummaryScale     = 9
)

// ErrOverflow is returned when a summed amount cannot be stored in the summary table.
var ErrOverflow = errors.New("value exceeds summary column precision")

var summaryLimit = decimal.New(1, SummaryPrecision-SummaryScale)

// CheckPrecision fails with ErrOverflow when d has more integer digits than
// the summary columns allow.
func CheckPrecision(d decimal.Decimal) error {
	if d.Abs().GreaterThanOrEqual(summaryLimit) {
		return fmt.Errorf("%w: %s", ErrOverflow, d.String())
	}
	return nil
}

// AddNull folds v into acc with SQL SUM semantics: NULL inputs are skipped and
// the result stays NULL until the first non-NULL value.
func AddNull(acc, v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return acc
	}
	if !acc.Valid {
		return v
	}
	return decimal.NullDecimal{Decimal: acc.Decimal.Add(v.Decimal), Valid: true}
}

// ParseNullDecimal converts a scanned numeric column into a NullDecimal.
func ParseNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse decimal %q: %w", s.String, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
