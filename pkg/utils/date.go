package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day layout used by config, the fundamentals
// provider and the CSV export.
const DateLayout = "2006-01-02"

func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// TruncateToDay drops the clock part of t, keeping its calendar day in UTC.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", value, DateLayout, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
