package timeline

import (
	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

// Pair is one unordered pair of conflicting bookings, A listed before B in input order.
type Pair struct {
	A booking.Booking `json:"a"`
	B booking.Booking `json:"b"`
}

// Overlap is the scheduling predicate: half-open intervals on exact timestamps, so a
// booking ending at 12:00 does not conflict with one starting at 12:00.
// It is deliberately finer than DayOverlap.
func Overlap(a, b booking.Booking) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// ConflictPairs lists every overlapping pair among project bookings. Appointments,
// vehicle and unfilled bookings never take part.
func ConflictPairs(items []booking.Booking) []Pair {
	projects := make([]booking.Booking, 0, len(items))
	for _, b := range items {
		if b.Type == booking.TypeProject {
			projects = append(projects, b)
		}
	}

	var pairs []Pair
	for i := 0; i < len(projects); i++ {
		for j := i + 1; j < len(projects); j++ {
			if Overlap(projects[i], projects[j]) {
				pairs = append(pairs, Pair{A: projects[i], B: projects[j]})
			}
		}
	}
	return pairs
}

func Conflicts(items []booking.Booking) int {
	return len(ConflictPairs(items))
}
