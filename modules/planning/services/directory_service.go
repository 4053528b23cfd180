package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

type CrewFilter struct {
	Tag        string
	ActiveOnly bool
	// Query fuzzy-matches crew names; matches are ordered by closeness.
	Query string
}

type CrewList struct {
	Crew          []booking.CrewMember `json:"data"`
	Count         int                  `json:"count"`
	AvailableTags []string             `json:"availableTags"`
}

type VehicleList struct {
	Vehicles []booking.Vehicle `json:"data"`
	Count    int               `json:"count"`
}

type ProjectSummary struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Number string     `json:"number,omitempty"`
	Status string     `json:"status,omitempty"`
	Color  string     `json:"color,omitempty"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

type ProjectList struct {
	Projects []ProjectSummary `json:"data"`
	Count    int              `json:"count"`
}

type SubprojectSummary struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	ProjectID   *int       `json:"projectId"`
	ProjectRef  string     `json:"projectRef,omitempty"`
	StatusID    *int       `json:"statusId"`
	StatusName  *string    `json:"statusName"`
	StatusRef   string     `json:"statusRef,omitempty"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	Location    string     `json:"location,omitempty"`
	InPlanning  bool       `json:"in_planning"`
	InFinancial bool       `json:"in_financial"`
}

type SubprojectList struct {
	Subprojects []SubprojectSummary `json:"data"`
	Count       int                 `json:"count"`
	StatusMap   map[int]string      `json:"statusMap"`
}

// DirectoryService lists crew, vehicles and projects for selectors.
type DirectoryService struct {
	repo booking.Repository
}

func NewDirectoryService(repo booking.Repository) *DirectoryService {
	return &DirectoryService{repo: repo}
}

func swedishSort(items []string) {
	col := collate.New(language.Swedish)
	sort.SliceStable(items, func(i, j int) bool {
		return col.CompareString(items[i], items[j]) < 0
	})
}

func (s *DirectoryService) Crew(ctx context.Context, f CrewFilter) (CrewList, error) {
	all, err := s.repo.AllCrew(ctx)
	if err != nil {
		return CrewList{}, err
	}

	tagSet := make(map[string]struct{})
	tags := make([]string, 0)
	for _, c := range all {
		for _, t := range c.Tags {
			if _, ok := tagSet[t]; !ok {
				tagSet[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}
	swedishSort(tags)

	col := collate.New(language.Swedish)
	sorted := append([]booking.CrewMember(nil), all...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})

	crew := make([]booking.CrewMember, 0, len(sorted))
	for _, c := range sorted {
		if f.Tag != "" && !c.HasTag(f.Tag) {
			continue
		}
		if f.ActiveOnly && !c.Active {
			continue
		}
		crew = append(crew, c)
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		names := make([]string, len(crew))
		for i, c := range crew {
			names[i] = c.Name
		}
		ranks := fuzzy.RankFindNormalizedFold(q, names)
		sort.Stable(ranks)
		matched := make([]booking.CrewMember, 0, len(ranks))
		for _, rank := range ranks {
			matched = append(matched, crew[rank.OriginalIndex])
		}
		crew = matched
	}

	return CrewList{Crew: crew, Count: len(crew), AvailableTags: tags}, nil
}

// CrewNames maps crew ids to display names; unknown ids are absent.
func (s *DirectoryService) CrewNames(ctx context.Context, ids []int) (map[int]string, error) {
	all, err := s.repo.AllCrew(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make(map[int]string, len(ids))
	for _, c := range all {
		if _, ok := wanted[c.ID]; ok {
			out[c.ID] = c.Name
		}
	}
	return out, nil
}

// Vehicles lists the vehicles shown in the planner.
func (s *DirectoryService) Vehicles(ctx context.Context) (VehicleList, error) {
	all, err := s.repo.AllVehicles(ctx)
	if err != nil {
		return VehicleList{}, err
	}
	out := make([]booking.Vehicle, 0, len(all))
	for _, v := range all {
		if v.InPlanner {
			out = append(out, v)
		}
	}
	return VehicleList{Vehicles: out, Count: len(out)}, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Projects lists projects ordered by start. With a period, only projects with a
// planning window touching it are kept.
func (s *DirectoryService) Projects(ctx context.Context, start, end time.Time) (ProjectList, error) {
	all, err := s.repo.AllProjects(ctx)
	if err != nil {
		return ProjectList{}, err
	}
	filtered := !start.IsZero() || !end.IsZero()
	if start.IsZero() {
		start = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}

	out := make([]ProjectSummary, 0, len(all))
	for _, p := range all {
		if filtered && !booking.WithinDays(p.Start, p.End, start, end) {
			continue
		}
		out = append(out, ProjectSummary{
			ID:     p.ID,
			Name:   booking.FirstName(booking.Value(p.Name), booking.Value(booking.SynthesizedProjectName(p.ID))),
			Number: p.Number,
			Status: p.Status,
			Color:  p.Color,
			Start:  timePtr(p.Start),
			End:    timePtr(p.End),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return startsBefore(out[i].Start, out[j].Start)
	})
	return ProjectList{Projects: out, Count: len(out)}, nil
}

// startsBefore orders by start time with undated entries last.
func startsBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return a.Before(*b)
}

func refID(ref reference.Reference) *int {
	if !ref.Resolved() {
		return nil
	}
	id := ref.ID()
	return &id
}

// Subprojects lists subprojects ordered by start, with status names taken from the
// status catalogue. Without the catalogue the list is still served, unnamed.
// A period keeps only dated subprojects touching it.
func (s *DirectoryService) Subprojects(ctx context.Context, start, end time.Time) (SubprojectList, error) {
	all, err := s.repo.AllSubprojects(ctx)
	if err != nil {
		return SubprojectList{}, err
	}
	statusMap := map[int]string{}
	if statuses, err := s.repo.AllStatuses(ctx); err == nil {
		for _, st := range statuses {
			statusMap[st.ID] = st.Name
		}
	}

	filtered := !start.IsZero() || !end.IsZero()
	if start.IsZero() {
		start = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}

	out := make([]SubprojectSummary, 0, len(all))
	for _, sp := range all {
		if filtered && !booking.WithinDays(sp.Start, sp.End, start, end) {
			continue
		}
		summary := SubprojectSummary{
			ID:          sp.ID,
			Name:        sp.Name,
			ProjectID:   refID(sp.Project),
			ProjectRef:  sp.Project.Path(),
			StatusID:    refID(sp.Status),
			StatusRef:   sp.Status.Path(),
			Start:       timePtr(sp.Start),
			End:         timePtr(sp.End),
			Location:    sp.Location,
			InPlanning:  sp.InPlanning,
			InFinancial: sp.InFinancial,
		}
		if name, ok := statusMap[sp.Status.ID()]; ok {
			summary.StatusName = &name
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return startsBefore(out[i].Start, out[j].Start)
	})
	return SubprojectList{Subprojects: out, Count: len(out), StatusMap: statusMap}, nil
}
