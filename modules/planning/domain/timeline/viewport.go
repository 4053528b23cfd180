package timeline

import (
	"math"
	"time"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

// Viewport is the visible, inclusive day range of a timeline.
type Viewport struct {
	Start time.Time
	End   time.Time
}

// Bar is the horizontal geometry of a booking, in percent of the timeline width.
type Bar struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(civilDay(to).Sub(civilDay(from)).Hours() / 24))
}

// Days is the number of day columns shown.
func (v Viewport) Days() int {
	n := daysBetween(v.Start, v.End) + 1
	if n < 1 {
		return 0
	}
	return n
}

// Bar clamps the booking to the viewport. ok is false when nothing of it is visible.
func (v Viewport) Bar(b booking.Booking) (Bar, bool) {
	total := v.Days()
	if total == 0 {
		return Bar{}, false
	}
	start := civilDay(b.Start)
	end := civilDay(b.End)
	first := civilDay(v.Start)
	last := civilDay(v.End)
	if end.Before(first) || start.After(last) {
		return Bar{}, false
	}
	if start.Before(first) {
		start = first
	}
	if end.After(last) {
		end = last
	}

	offset := daysBetween(first, start)
	duration := daysBetween(start, end) + 1

	left := float64(offset) / float64(total) * 100
	width := float64(duration) / float64(total) * 100
	left = math.Max(0, left)
	width = math.Min(100-left, width)
	return Bar{Left: left, Width: width}, true
}

// Pan shifts the viewport by whole days, keeping its length.
func (v Viewport) Pan(days int) Viewport {
	return Viewport{Start: v.Start.AddDate(0, 0, days), End: v.End.AddDate(0, 0, days)}
}

// PanDays converts a horizontal drag into a day shift. Dragging the content to the
// right (positive delta) reveals earlier days, so the shift is negative.
func PanDays(pixelDelta, widthPx float64, totalDays int) int {
	if widthPx <= 0 || totalDays <= 0 {
		return 0
	}
	days := -math.Round(pixelDelta / widthPx * float64(totalDays))
	if days == 0 {
		return 0
	}
	return int(days)
}
