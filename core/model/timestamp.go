package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	isoSeconds = "2006-01-02T15:04:05"
	isoMicros  = "2006-01-02T15:04:05.000000"
)

// Accepted input layouts. Fractional seconds are accepted after the seconds
// field by time.Parse even when the layout omits them.
var timestampLayouts = []string{
	time.RFC3339,
	isoSeconds,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 like timestamp. Values carrying an offset
// are converted to UTC; values without one are taken as UTC wall time.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s != "" {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// FormatTimestamp renders t as an offset-free ISO-8601 string, with
// microseconds only when the instant has a sub-second part.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format(isoSeconds)
	}
	return t.Format(isoMicros)
}

// FormatClock renders the wall-clock part of t as HH:MM:SS.
func FormatClock(t time.Time) string { return t.UTC().Format("15:04:05") }
