package timeline

import (
	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

// Placement annotates a booking with the display row it was packed into.
type Placement struct {
	Booking booking.Booking `json:"booking"`
	Row     int             `json:"rowIndex"`
}

type Layout struct {
	Placements []Placement `json:"bookings"`
	RowCount   int         `json:"rowCount"`
}

// DayOverlap is the layout predicate: two bookings collide when they share at least
// one calendar day, regardless of the hours involved.
func DayOverlap(a, b booking.Booking) bool {
	return booking.DayKey(a.Start) <= booking.DayKey(b.End) &&
		booking.DayKey(b.Start) <= booking.DayKey(a.End)
}

// Pack assigns every booking to the first row that has no day-overlapping booking,
// opening a new row when none qualifies. Input order is preserved and decides priority;
// the row count is minimal only when the input is sorted by start.
func Pack(items []booking.Booking) Layout {
	var rows [][]booking.Booking
	placements := make([]Placement, 0, len(items))

	for _, b := range items {
		row := -1
		for i, existing := range rows {
			if !overlapsAny(existing, b) {
				row = i
				break
			}
		}
		if row == -1 {
			rows = append(rows, nil)
			row = len(rows) - 1
		}
		rows[row] = append(rows[row], b)
		placements = append(placements, Placement{Booking: b, Row: row})
	}

	return Layout{Placements: placements, RowCount: len(rows)}
}

func overlapsAny(row []booking.Booking, b booking.Booking) bool {
	for _, existing := range row {
		if DayOverlap(existing, b) {
			return true
		}
	}
	return false
}
