package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

var errUpstream = errors.New("upstream unavailable")

// fakeRepository serves planning data from maps and counts calls per operation.
// Operations listed in fail return errUpstream; "crew:<id>" style keys fail one subject.
type fakeRepository struct {
	crewAssignments    map[int][]booking.Assignment
	vehicleAssignments map[int][]booking.Assignment
	appointments       map[int][]booking.Appointment
	functions          map[int]booking.Function
	projects           map[int]booking.Project
	contacts           map[int]booking.Contact
	crew               map[int]booking.CrewMember
	vehicles           []booking.Vehicle
	subprojects        []booking.Subproject
	statuses           []booking.Status
	crewCounts         map[int]int

	fail map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		crewAssignments:    map[int][]booking.Assignment{},
		vehicleAssignments: map[int][]booking.Assignment{},
		appointments:       map[int][]booking.Appointment{},
		functions:          map[int]booking.Function{},
		projects:           map[int]booking.Project{},
		contacts:           map[int]booking.Contact{},
		crew:               map[int]booking.CrewMember{},
		crewCounts:         map[int]int{},
		fail:               map[string]bool{},
		calls:              map[string]int{},
	}
}

func (f *fakeRepository) hit(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.fail[op] {
		return fmt.Errorf("%s: %w", op, errUpstream)
	}
	return nil
}

func (f *fakeRepository) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func sortedValues[T any](m map[int]T) []T {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (f *fakeRepository) CrewAssignments(_ context.Context, crewID int) ([]booking.Assignment, error) {
	if err := f.hit(fmt.Sprintf("crew:%d", crewID)); err != nil {
		return nil, err
	}
	return f.crewAssignments[crewID], nil
}

func (f *fakeRepository) VehicleAssignments(_ context.Context, vehicleID int) ([]booking.Assignment, error) {
	if err := f.hit(fmt.Sprintf("vehicle:%d", vehicleID)); err != nil {
		return nil, err
	}
	return f.vehicleAssignments[vehicleID], nil
}

func (f *fakeRepository) Appointments(_ context.Context, crewID int) ([]booking.Appointment, error) {
	if err := f.hit(fmt.Sprintf("appointments:%d", crewID)); err != nil {
		return nil, err
	}
	return f.appointments[crewID], nil
}

func (f *fakeRepository) AllFunctions(context.Context) ([]booking.Function, error) {
	if err := f.hit("functions:all"); err != nil {
		return nil, err
	}
	return sortedValues(f.functions), nil
}

func (f *fakeRepository) Function(_ context.Context, id int) (booking.Function, error) {
	if err := f.hit("functions:one"); err != nil {
		return booking.Function{}, err
	}
	fn, ok := f.functions[id]
	if !ok {
		return booking.Function{}, fmt.Errorf("function %d: not found", id)
	}
	return fn, nil
}

func (f *fakeRepository) ProjectFunctions(_ context.Context, projectID int) ([]booking.Function, error) {
	if err := f.hit(fmt.Sprintf("projectfunctions:%d", projectID)); err != nil {
		return nil, err
	}
	var out []booking.Function
	for _, fn := range sortedValues(f.functions) {
		if fn.Project.ID() == projectID {
			out = append(out, fn)
		}
	}
	return out, nil
}

func (f *fakeRepository) FunctionCrewCount(_ context.Context, functionID int) (int, error) {
	if err := f.hit(fmt.Sprintf("crewcount:%d", functionID)); err != nil {
		return 0, err
	}
	return f.crewCounts[functionID], nil
}

func (f *fakeRepository) AllProjects(context.Context) ([]booking.Project, error) {
	if err := f.hit("projects:all"); err != nil {
		return nil, err
	}
	return sortedValues(f.projects), nil
}

func (f *fakeRepository) Project(_ context.Context, id int) (booking.Project, error) {
	if err := f.hit("projects:one"); err != nil {
		return booking.Project{}, err
	}
	p, ok := f.projects[id]
	if !ok {
		return booking.Project{}, fmt.Errorf("project %d: not found", id)
	}
	return p, nil
}

func (f *fakeRepository) AllSubprojects(context.Context) ([]booking.Subproject, error) {
	if err := f.hit("subprojects:all"); err != nil {
		return nil, err
	}
	return f.subprojects, nil
}

func (f *fakeRepository) AllStatuses(context.Context) ([]booking.Status, error) {
	if err := f.hit("statuses:all"); err != nil {
		return nil, err
	}
	return f.statuses, nil
}

func (f *fakeRepository) AllContacts(context.Context) ([]booking.Contact, error) {
	if err := f.hit("contacts:all"); err != nil {
		return nil, err
	}
	return sortedValues(f.contacts), nil
}

func (f *fakeRepository) Contact(_ context.Context, id int) (booking.Contact, error) {
	if err := f.hit("contacts:one"); err != nil {
		return booking.Contact{}, err
	}
	c, ok := f.contacts[id]
	if !ok {
		return booking.Contact{}, fmt.Errorf("contact %d: not found", id)
	}
	return c, nil
}

func (f *fakeRepository) AllCrew(context.Context) ([]booking.CrewMember, error) {
	if err := f.hit("crew:all"); err != nil {
		return nil, err
	}
	return sortedValues(f.crew), nil
}

func (f *fakeRepository) CrewMember(_ context.Context, id int) (booking.CrewMember, error) {
	if err := f.hit("crew:one"); err != nil {
		return booking.CrewMember{}, err
	}
	c, ok := f.crew[id]
	if !ok {
		return booking.CrewMember{}, fmt.Errorf("crew %d: not found", id)
	}
	return c, nil
}

func (f *fakeRepository) AllVehicles(context.Context) ([]booking.Vehicle, error) {
	if err := f.hit("vehicles:all"); err != nil {
		return nil, err
	}
	return f.vehicles, nil
}

func day(s string) time.Time {
	t, ok := booking.ParseTime(s)
	if !ok {
		panic("bad time " + s)
	}
	return t
}
