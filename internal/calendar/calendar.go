// Package calendar provides pure date arithmetic for the recurrence engine.
//
// All functions operate on calendar dates: inputs are normalized to midnight
// UTC so that time-of-day and timezone offsets never shift an occurrence
// across a day boundary.
package calendar

import "time"

// DateOnly normalizes t to midnight UTC, discarding the time-of-day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d.
func AddDays(d time.Time, n int) time.Time {
	return DateOnly(d).AddDate(0, 0, n)
}

// AddWeeks returns the date n weeks after d.
func AddWeeks(d time.Time, n int) time.Time {
	return AddDays(d, 7*n)
}

// AddMonths returns the date n months after d, clamping the day-of-month to
// the last valid day of the target month. Jan 31 + 1 month is Feb 28 (or
// Feb 29 in a leap year), not Mar 2/3 as time.AddDate would produce.
func AddMonths(d time.Time, n int) time.Time {
	d = DateOnly(d)
	y, m, day := d.Date()

	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddYears returns the date n years after d with the same month-end clamping
// as AddMonths (Feb 29 + 1 year is Feb 28).
func AddYears(d time.Time, n int) time.Time {
	return AddMonths(d, 12*n)
}

// Before reports whether calendar date a falls strictly before calendar date b.
func Before(a, b time.Time) bool {
	return DateOnly(a).Before(DateOnly(b))
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// OnOrBefore reports whether calendar date a falls on or before calendar date b.
func OnOrBefore(a, b time.Time) bool {
	return !Before(b, a)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
