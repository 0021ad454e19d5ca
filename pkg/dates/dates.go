// Package dates handles the calendar-day business dates used across loans
// and returns.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the dd/MM/yyyy form used on every outward projection.
const Layout = "02/01/2006"

var acceptedDateLayouts = []string{
	"2/1/2006",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// Parse accepts dd/MM/yyyy, yyyy-MM-dd or RFC3339 and returns UTC midnight
// of the calendar day as written. An RFC3339 offset never shifts the day.
func Parse(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range acceptedDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q (expected dd/MM/yyyy or yyyy-MM-dd)", value)
}

// StartOfDay truncates t to midnight UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders t as dd/MM/yyyy in UTC.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(Layout)
}
