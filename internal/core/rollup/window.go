package rollup

import (
	"fmt"
	"time"
)

// TimeScope is the window code stored in the summary table's time_scope_value.
// Codes are negative so readers can sort by recency rank without a lookup table.
type TimeScope int

const (
	ScopeLast30Days    TimeScope = -30
	ScopeLast10Days    TimeScope = -10
	ScopeCurrentMonth  TimeScope = -1
	ScopePreviousMonth TimeScope = -2
)

// TimeScopes lists every window the engine evaluates, in publish order.
var TimeScopes = []TimeScope{
	ScopeLast30Days,
	ScopeLast10Days,
	ScopeCurrentMonth,
	ScopePreviousMonth,
}

// ValidTimeScope reports whether s is one of the fixed window codes.
func ValidTimeScope(s TimeScope) bool {
	for _, known := range TimeScopes {
		if s == known {
			return true
		}
	}
	return false
}

// Window is a resolved usage-date range for one time scope.
// Start is inclusive. End is exclusive; a zero End leaves the window open.
type Window struct {
	Scope TimeScope
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar date of d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	day := DateOf(d)
	if day.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || day.Before(w.End)
}

func (w Window) String() string {
	if w.End.IsZero() {
		return fmt.Sprintf("%d[%s,)", w.Scope, w.Start.Format(time.DateOnly))
	}
	return fmt.Sprintf("%d[%s,%s)", w.Scope, w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WindowFor resolves scope relative to today.
// -30 and -10 are trailing-day windows; -1 and -2 are calendar-month aligned.
func WindowFor(scope TimeScope, today time.Time) (Window, error) {
	today = DateOf(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch scope {
	case ScopeLast30Days:
		return Window{Scope: scope, Start: today.AddDate(0, 0, -30)}, nil
	case ScopeLast10Days:
		return Window{Scope: scope, Start: today.AddDate(0, 0, -10)}, nil
	case ScopeCurrentMonth:
		return Window{Scope: scope, Start: monthStart}, nil
	case ScopePreviousMonth:
		return Window{Scope: scope, Start: monthStart.AddDate(0, -1, 0), End: monthStart}, nil
	default:
		return Window{}, fmt.Errorf("unknown time scope %d", scope)
	}
}

// Windows resolves every time scope for one run. today must be captured once
// per run so all buckets share the same boundaries.
func Windows(today time.Time) []Window {
	windows := make([]Window, 0, len(TimeScopes))
	for _, scope := range TimeScopes {
		w, _ := WindowFor(scope, today)
		windows = append(windows, w)
	}
	return windows
}

// ScanRange returns the smallest [start, end) covering all windows.
// end is zero when any window is open-ended.
func ScanRange(windows []Window) (start, end time.Time) {
	open := false
	for i, w := range windows {
		if i == 0 || w.Start.Before(start) {
			start = w.Start
		}
		if w.End.IsZero() {
			open = true
			continue
		}
		if w.End.After(end) {
			end = w.End
		}
	}
	if open {
		end = time.Time{}
	}
	return start, end
}
