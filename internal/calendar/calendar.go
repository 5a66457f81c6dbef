// Package calendar treats time.Time values as civil dates: the year, month
// and day read in the value's own location, with the time of day dropped.
package calendar

import "time"

// Day numbers the civil date of t, one per calendar day.
func Day(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DaysBetween counts calendar days from -> to.
func DaysBetween(from, to time.Time) int {
	return int(Day(to) - Day(from))
}
