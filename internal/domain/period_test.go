package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func TestWeekStart_MidWeek(t *testing.T) {
	// Wednesday 2026-01-14 -> Monday 2026-01-12.
	got := WeekStart(date(2026, time.January, 14))
	want := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", got, want)
	}
}

func TestWeekStart_Sunday(t *testing.T) {
	// Sunday still belongs to the week started the previous Monday.
	got := WeekStart(date(2026, time.January, 18))
	want := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", got, want)
	}
}

func TestWeekStart_Monday(t *testing.T) {
	got := WeekStart(date(2026, time.January, 12))
	want := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", got, want)
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(date(2026, time.February, 27))
	want := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MonthStart = %v, want %v", got, want)
	}
}

func TestTrimesterStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{date(2025, time.October, 10), time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)},
		{date(2025, time.December, 31), time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)},
		{date(2026, time.February, 5), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{date(2026, time.March, 31), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{date(2026, time.April, 1), time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{date(2026, time.June, 15), time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{date(2026, time.July, 20), time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := TrimesterStart(c.in); !got.Equal(c.want) {
			t.Errorf("TrimesterStart(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPeriodStarts_AllThreeTypes(t *testing.T) {
	starts := PeriodStarts(date(2026, time.January, 14))
	if len(starts) != 3 {
		t.Fatalf("expected 3 period types, got %d", len(starts))
	}
	for _, pt := range []PeriodType{PeriodWeek, PeriodMonth, PeriodTrimester} {
		if _, ok := starts[pt]; !ok {
			t.Errorf("missing period type %s", pt)
		}
	}
}
