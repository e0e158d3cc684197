package domain

import "time"

// WeekStart returns the most recent Monday at or before t, at midnight in t's
// location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of t's calendar month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TrimesterStart returns the start of the school trimester containing t.
// Trimesters follow the French school calendar: Sep-Dec, Jan-Mar, Apr-Jun.
// July and August fall into a summer bucket starting Jul 1.
func TrimesterStart(t time.Time) time.Time {
	switch {
	case t.Month() >= time.September:
		return time.Date(t.Year(), time.September, 1, 0, 0, 0, 0, t.Location())
	case t.Month() <= time.March:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	case t.Month() <= time.June:
		return time.Date(t.Year(), time.April, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), time.July, 1, 0, 0, 0, 0, t.Location())
	}
}

// PeriodStarts returns the start of each period type containing t, keyed by
// period type.
func PeriodStarts(t time.Time) map[PeriodType]time.Time {
	return map[PeriodType]time.Time{
		PeriodWeek:      WeekStart(t),
		PeriodMonth:     MonthStart(t),
		PeriodTrimester: TrimesterStart(t),
	}
}
