// Package dates holds the calendar-day helpers used by every date-relative
// predicate (overdue, due today, today/upcoming filters, retention cleanup).
// All comparisons happen at day granularity in the local time zone.
package dates

import "time"

// StartOfDay returns t with the time-of-day zeroed out, in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// BeforeDay reports whether a's calendar day is strictly before b's.
func BeforeDay(a, b time.Time) bool {
	return StartOfDay(a).Before(StartOfDay(b))
}

// DaysAgo returns the instant n days before now.
func DaysAgo(now time.Time, n int) time.Time {
	return now.AddDate(0, 0, -n)
}
