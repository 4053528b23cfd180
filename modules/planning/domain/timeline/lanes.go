package timeline

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

// Lane is one timeline row group: a subject in crew view, a project in project view.
type Lane struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	SubjectID int    `json:"subjectId,omitempty"`
	ProjectID *int   `json:"projectId,omitempty"`
	Layout
	Conflicts int `json:"conflicts"`
}

func newLane(key, title string, items []booking.Booking) Lane {
	return Lane{
		Key:       key,
		Title:     title,
		Layout:    Pack(items),
		Conflicts: Conflicts(items),
	}
}

// GroupBySubject builds one lane per requested subject, in the requested order, including
// subjects without bookings. titles may be nil.
func GroupBySubject(subjectIDs []int, titles map[int]string, items []booking.Booking) []Lane {
	grouped := make(map[int][]booking.Booking, len(subjectIDs))
	for _, b := range items {
		grouped[b.SubjectID] = append(grouped[b.SubjectID], b)
	}

	lanes := make([]Lane, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		lane := newLane(subjectKey(id), titles[id], grouped[id])
		lane.SubjectID = id
		lanes = append(lanes, lane)
	}
	return lanes
}

// GroupByProject groups bookings by project id (or name when the id is unknown) and orders
// lanes by Swedish collation of the project name.
func GroupByProject(items []booking.Booking) []Lane {
	type group struct {
		title     string
		projectID *int
		items     []booking.Booking
	}
	groups := make(map[string]*group)
	var keys []string
	for _, b := range items {
		key := b.GroupKey()
		g, ok := groups[key]
		if !ok {
			g = &group{title: b.ProjectName, projectID: b.ProjectID}
			groups[key] = g
			keys = append(keys, key)
		}
		g.items = append(g.items, b)
	}

	col := collate.New(language.Swedish)
	sort.SliceStable(keys, func(i, j int) bool {
		return col.CompareString(groups[keys[i]].title, groups[keys[j]].title) < 0
	})

	lanes := make([]Lane, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		lane := newLane(key, g.title, g.items)
		lane.ProjectID = g.projectID
		lanes = append(lanes, lane)
	}
	return lanes
}

func subjectKey(id int) string {
	return "subject:" + strconv.Itoa(id)
}
