package booking

import (
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts the timestamp shapes the upstream emits. Timestamps without an
// offset are read as UTC.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DayKey is the calendar day of t in its own offset, as yyyymmdd.
func DayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// WithinDays reports whether [start, end] touches any calendar day of [from, to],
// comparing day keys only (the upstream filters on the date part of timestamps).
func WithinDays(start, end, from, to time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return DayKey(end) >= DayKey(from) && DayKey(start) <= DayKey(to)
}
