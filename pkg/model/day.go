package model

import (
	"fmt"
	"regexp"
	"time"
)

// Day is a calendar date in UTC, formatted YYYY-MM-DD. Each day has at
// most one log file and one manifest per journal.
type Day string

// DayLayout is the time layout for Day values.
const DayLayout = "2006-01-02"

var dayRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDay validates a day string.
func ParseDay(s string) (Day, error) {
	if !dayRegex.MatchString(s) {
		return "", fmt.Errorf("day must be formatted YYYY-MM-DD: %q", s)
	}
	if _, err := time.Parse(DayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(s), nil
}

// Today returns the current calendar day in UTC.
func Today() Day {
	return Day(time.Now().UTC().Format(DayLayout))
}

// String returns the day as a string.
func (d Day) String() string {
	return string(d)
}

// Time returns the midnight UTC instant of the day.
func (d Day) Time() (time.Time, error) {
	return time.Parse(DayLayout, string(d))
}
