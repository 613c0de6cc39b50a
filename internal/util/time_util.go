package util

import (
	"time"
)

const dateLayout = "2006-01-02"

// NewDate builds a midnight-UTC calendar date, the convention every stored
// event_date column follows.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD string into a calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// DateLte reports whether t1's calendar date is on or before t2's, ignoring
// the time-of-day component.
func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(dateLayout) == t2.Format(dateLayout)
}
