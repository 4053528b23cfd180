package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

var errNotFound = errors.New("not found")

// stubRepository is a read-only planning data set. failCrew makes AllCrew fail.
type stubRepository struct {
	assignments map[int][]booking.Assignment
	functions   map[int]booking.Function
	projects    map[int]booking.Project
	crew        []booking.CrewMember
	failCrew    error
}

func ts(raw string) time.Time {
	t, ok := booking.ParseTime(raw)
	if !ok {
		panic("bad time " + raw)
	}
	return t
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		assignments: map[int][]booking.Assignment{
			1: {{
				ID: 500, Kind: booking.KindCrew, SubjectID: 1,
				Start: ts("2024-06-02T08:00:00Z"), End: ts("2024-06-02T17:00:00Z"),
				Function: reference.New(reference.ProjectFunctions, 10),
			}},
		},
		functions: map[int]booking.Function{
			10: {ID: 10, Name: "Ljustekniker", Project: reference.New(reference.Projects, 100)},
			11: {ID: 11, Name: "Ljudtekniker", Project: reference.New(reference.Projects, 100), Quantity: 1},
		},
		projects: map[int]booking.Project{
			100: {
				ID: 100, Name: "Summer Tour", Status: "Confirmed",
				Start: ts("2024-06-01"), End: ts("2024-06-10"),
			},
		},
		crew: []booking.CrewMember{
			{ID: 1, Name: "Östen Berg", Active: true, Tags: []string{"Tekniker"}},
			{ID: 2, Name: "Alva Lind", Active: true, Tags: []string{"Ljus"}},
		},
	}
}

func (s *stubRepository) CrewAssignments(_ context.Context, crewID int) ([]booking.Assignment, error) {
	return s.assignments[crewID], nil
}

func (s *stubRepository) VehicleAssignments(context.Context, int) ([]booking.Assignment, error) {
	return nil, nil
}

func (s *stubRepository) Appointments(context.Context, int) ([]booking.Appointment, error) {
	return nil, nil
}

func (s *stubRepository) AllFunctions(context.Context) ([]booking.Function, error) {
	out := make([]booking.Function, 0, len(s.functions))
	for _, f := range s.functions {
		out = append(out, f)
	}
	return out, nil
}

func (s *stubRepository) Function(_ context.Context, id int) (booking.Function, error) {
	if f, ok := s.functions[id]; ok {
		return f, nil
	}
	return booking.Function{}, fmt.Errorf("function %d: %w", id, errNotFound)
}

func (s *stubRepository) ProjectFunctions(_ context.Context, projectID int) ([]booking.Function, error) {
	var out []booking.Function
	for _, f := range s.functions {
		if f.Project.ID() == projectID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubRepository) FunctionCrewCount(_ context.Context, functionID int) (int, error) {
	n := 0
	for _, list := range s.assignments {
		for _, a := range list {
			if a.Function.ID() == functionID {
				n++
			}
		}
	}
	return n, nil
}

func (s *stubRepository) AllProjects(context.Context) ([]booking.Project, error) {
	out := make([]booking.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubRepository) Project(_ context.Context, id int) (booking.Project, error) {
	if p, ok := s.projects[id]; ok {
		return p, nil
	}
	return booking.Project{}, fmt.Errorf("project %d: %w", id, errNotFound)
}

func (s *stubRepository) AllSubprojects(context.Context) ([]booking.Subproject, error) {
	return []booking.Subproject{
		{
			ID: 30, Name: "Load-in", Project: reference.New(reference.Projects, 100), Status: reference.New(reference.Statuses, 1),
			Start: ts("2024-06-01T08:00:00Z"), End: ts("2024-06-01T18:00:00Z"), InPlanning: true,
		},
		{ID: 31, Name: "Wrap-up", Start: ts("2024-09-01"), End: ts("2024-09-02")},
	}, nil
}

func (s *stubRepository) AllStatuses(context.Context) ([]booking.Status, error) {
	return []booking.Status{{ID: 1, Name: "Confirmed"}}, nil
}

func (s *stubRepository) AllContacts(context.Context) ([]booking.Contact, error) {
	return nil, nil
}

func (s *stubRepository) Contact(_ context.Context, id int) (booking.Contact, error) {
	return booking.Contact{}, fmt.Errorf("contact %d: %w", id, errNotFound)
}

func (s *stubRepository) AllCrew(context.Context) ([]booking.CrewMember, error) {
	if s.failCrew != nil {
		return nil, s.failCrew
	}
	return s.crew, nil
}

func (s *stubRepository) CrewMember(_ context.Context, id int) (booking.CrewMember, error) {
	for _, c := range s.crew {
		if c.ID == id {
			return c, nil
		}
	}
	return booking.CrewMember{}, fmt.Errorf("crew %d: %w", id, errNotFound)
}

func (s *stubRepository) AllVehicles(context.Context) ([]booking.Vehicle, error) {
	return []booking.Vehicle{{ID: 3, Name: "Sprinter", InPlanner: true}, {ID: 4, Name: "Old van"}}, nil
}
