package utils

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar days.
const DayFormat = "2006-01-02"

// DayOf truncates t to midnight UTC of its calendar date in its own location.
// DATE columns and all day arithmetic use this normal form.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current local calendar day in normal form.
func Today() time.Time {
	return DayOf(time.Now().In(time.Local))
}

// ParseDay parses a YYYY-MM-DD string into a normalized day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DayOf(t), nil
}

// FormatDay renders a day in wire format.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}
