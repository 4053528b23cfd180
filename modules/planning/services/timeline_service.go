package services

import (
	"context"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/timeline"
)

type Mode string

const (
	ModeCrew    Mode = "crew"
	ModeProject Mode = "project"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "", ModeCrew:
		return ModeCrew, true
	case ModeProject:
		return ModeProject, true
	}
	return "", false
}

type TimelineQuery struct {
	Query
	Mode Mode
}

type TimelineResult struct {
	Mode     Mode                    `json:"mode"`
	Period   Period                  `json:"period"`
	Days     int                     `json:"days"`
	Lanes    []timeline.Lane         `json:"lanes"`
	Bars     map[string]timeline.Bar `json:"bars"`
	Count    int                     `json:"count"`
	Failures []Failure               `json:"failures,omitempty"`
}

// TimelineService lays resolved bookings out into lanes and rows.
type TimelineService struct {
	bookings  *BookingService
	directory *DirectoryService
}

func NewTimelineService(bookings *BookingService, directory *DirectoryService) *TimelineService {
	return &TimelineService{bookings: bookings, directory: directory}
}

// Build groups bookings per subject (crew mode) or per project (project mode) and
// computes bar geometry for the viewport.
func (s *TimelineService) Build(items []booking.Booking, mode Mode, vp timeline.Viewport, subjectIDs []int, titles map[int]string) TimelineResult {
	var lanes []timeline.Lane
	switch mode {
	case ModeProject:
		projects := make([]booking.Booking, 0, len(items))
		for _, b := range items {
			if b.Type == booking.TypeProject {
				projects = append(projects, b)
			}
		}
		lanes = timeline.GroupByProject(projects)
	default:
		mode = ModeCrew
		lanes = timeline.GroupBySubject(subjectIDs, titles, items)
	}

	bars := make(map[string]timeline.Bar, len(items))
	for _, b := range items {
		if bar, ok := vp.Bar(b); ok {
			bars[b.ID] = bar
		}
	}
	return TimelineResult{
		Mode:   mode,
		Period: Period{Start: vp.Start.Format(dateLayout), End: vp.End.Format(dateLayout)},
		Days:   vp.Days(),
		Lanes:  lanes,
		Bars:   bars,
		Count:  len(items),
	}
}

// Timeline resolves the crew bookings of q and lays them out. Crew names are best
// effort; lanes without a name keep an empty title.
func (s *TimelineService) Timeline(ctx context.Context, q TimelineQuery) (TimelineResult, error) {
	res, err := s.bookings.ResolveBookings(ctx, q.Query)
	if err != nil {
		return TimelineResult{}, err
	}
	ids := uniqueIDs(q.SubjectIDs)

	titles, err := s.directory.CrewNames(ctx, ids)
	failures := res.Failures
	if err != nil {
		failures = append(failures, Failure{Collection: "crew", Error: err.Error()})
	}

	out := s.Build(res.Bookings, q.Mode, timeline.Viewport{Start: q.Start, End: q.End}, ids, titles)
	out.Failures = failures
	return out, nil
}
