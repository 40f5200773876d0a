package cleaning

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Month-first is preferred over day-first for
// slash-separated dates.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2-Jan-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a date in any accepted layout and returns it truncated to
// UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
