package rollup

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowFor(t *testing.T) {
	today := date(2026, 3, 15)

	tests := []struct {
		scope     TimeScope
		wantStart time.Time
		wantEnd   time.Time
	}{
		{ScopeLast30Days, date(2026, 2, 13), time.Time{}},
		{ScopeLast10Days, date(2026, 3, 5), time.Time{}},
		{ScopeCurrentMonth, date(2026, 3, 1), time.Time{}},
		{ScopePreviousMonth, date(2026, 2, 1), date(2026, 3, 1)},
	}

	for _, tc := range tests {
		t.Run(strconv.Itoa(int(tc.scope)), func(t *testing.T) {
			w, err := WindowFor(tc.scope, today)
			require.NoError(t, err)
			require.Equal(t, tc.scope, w.Scope)
			require.True(t, tc.wantStart.Equal(w.Start), "start=%s", w.Start)
			require.True(t, tc.wantEnd.Equal(w.End), "end=%s", w.End)
		})
	}

	_, err := WindowFor(TimeScope(-7), today)
	require.Error(t, err)
}

func TestWindowFor_PreviousMonthAcrossYear(t *testing.T) {
	w, err := WindowFor(ScopePreviousMonth, date(2026, 1, 31))
	require.NoError(t, err)
	require.Equal(t, date(2025, 12, 1), w.Start)
	require.Equal(t, date(2026, 1, 1), w.End)
}

func TestWindow_Boundaries(t *testing.T) {
	today := date(2026, 3, 15)
	last30, _ := WindowFor(ScopeLast30Days, today)
	current, _ := WindowFor(ScopeCurrentMonth, today)
	previous, _ := WindowFor(ScopePreviousMonth, today)

	// Lower bound of the trailing window is inclusive.
	require.True(t, last30.Contains(today.AddDate(0, 0, -30)))
	require.False(t, last30.Contains(today.AddDate(0, 0, -31)))

	require.True(t, previous.Contains(date(2026, 2, 1)))
	require.True(t, previous.Contains(date(2026, 2, 28)))
	require.False(t, previous.Contains(date(2026, 3, 1)))
	require.False(t, previous.Contains(date(2026, 1, 31)))

	require.True(t, current.Contains(date(2026, 3, 1)))
	require.False(t, current.Contains(date(2026, 2, 28)))
}

func TestWindow_ContainsIgnoresTimeOfDay(t *testing.T) {
	w, _ := WindowFor(ScopeLast10Days, date(2026, 3, 15))
	require.True(t, w.Contains(time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC)))
	require.False(t, w.Contains(time.Date(2026, 3, 4, 23, 59, 0, 0, time.UTC)))
}

func TestScanRange(t *testing.T) {
	start, end := ScanRange(Windows(date(2026, 3, 15)))
	require.Equal(t, date(2026, 2, 1), start)
	require.True(t, end.IsZero())

	// Early in a month the trailing 30 days reach further back than the prior month.
	start, _ = ScanRange(Windows(date(2026, 3, 1)))
	require.Equal(t, date(2026, 1, 30), start)

	start, end = ScanRange([]Window{{Scope: ScopePreviousMonth, Start: date(2026, 2, 1), End: date(2026, 3, 1)}})
	require.Equal(t, date(2026, 2, 1), start)
	require.Equal(t, date(2026, 3, 1), end)
}

func TestValidTimeScope(t *testing.T) {
	for _, s := range TimeScopes {
		require.True(t, ValidTimeScope(s))
	}
	require.False(t, ValidTimeScope(0))
	require.False(t, ValidTimeScope(-3))
}
