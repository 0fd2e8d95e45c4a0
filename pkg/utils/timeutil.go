package utils

import (
	"fmt"
	"strings"
	"time"
)

// ET is the US Eastern time zone, where the rate and yield sources publish.
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: fixed EST offset if tz database is not available
		ET = time.FixedZone("ET", -5*60*60)
	}
}

// NowET returns the current time in US Eastern time.
func NowET() time.Time {
	return time.Now().In(ET)
}

// dateLayouts are the calendar-date formats accepted in forecast files and
// query strings, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006-01",
}

// ParseDate parses a calendar date in any of the supported layouts.
// The result is midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return StartOfDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTimeET formats t as "2006-01-02 15:04:05 MST" in US Eastern time.
func FormatDateTimeET(t time.Time) string {
	return t.In(ET).Format("2006-01-02 15:04:05 MST")
}
