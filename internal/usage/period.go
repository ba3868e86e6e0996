package usage

import "time"

const periodLayout = "2006-01"

// PeriodKey returns the calendar month of t in UTC, e.g. "2026-03".
func PeriodKey(t time.Time) string {
	return t.UTC().Format(periodLayout)
}

// ResetsAt returns the start of the month following t, in UTC.
func ResetsAt(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
