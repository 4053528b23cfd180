package rentman

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

const DefaultPageSize = 100

// Logical cache keys of whole-collection prefetches.
const (
	KeyAllFunctions   = "all_projectfunctions"
	KeyAllProjects    = "all_projects"
	KeyAllContacts    = "all_contacts"
	KeyAllCrew        = "all_crew"
	KeyAllVehicles    = "all_vehicles"
	KeyAllSubprojects = "all_subprojects"
	KeyAllStatuses    = "all_statuses"
)

// Directory reads planning entities through a Client.
type Directory struct {
	client   *Client
	pageSize int
}

var _ booking.Repository = (*Directory)(nil)

func NewDirectory(client *Client, pageSize int) *Directory {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Directory{client: client, pageSize: pageSize}
}

func (d *Directory) PageSize() int {
	return d.pageSize
}

func decodeAll[T any](records []json.RawMessage, endpoint string) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, raw := range records {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, &DecodeError{URL: endpoint, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

func mapAll[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

func listAll[T, R any](ctx context.Context, d *Directory, endpoint string, params url.Values, fn func(T) R) ([]R, error) {
	records, err := d.client.FetchAllPages(ctx, endpoint, params, d.pageSize)
	if err != nil {
		return nil, err
	}
	dtos, err := decodeAll[T](records, endpoint)
	if err != nil {
		return nil, err
	}
	return mapAll(dtos, fn), nil
}

func listCached[T, R any](ctx context.Context, d *Directory, endpoint, key string, fn func(T) R) ([]R, error) {
	records, err := d.client.FetchAllPagesCached(ctx, endpoint, nil, d.pageSize, key)
	if err != nil {
		return nil, err
	}
	dtos, err := decodeAll[T](records, endpoint)
	if err != nil {
		return nil, err
	}
	return mapAll(dtos, fn), nil
}

func getOne[T, R any](ctx context.Context, d *Directory, endpoint string, fn func(T) R) (R, error) {
	var zero R
	body, err := d.client.Get(ctx, endpoint, nil)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(unwrapData(body), &v); err != nil {
		return zero, &DecodeError{URL: endpoint, Err: err}
	}
	return fn(v), nil
}

func (d *Directory) CrewAssignments(ctx context.Context, crewID int) ([]booking.Assignment, error) {
	params := url.Values{"crewmember": {reference.New(reference.Crew, crewID).Path()}}
	return listAll(ctx, d, "/projectcrew", params, func(dto crewAssignmentDTO) booking.Assignment {
		return toCrewAssignment(dto, crewID)
	})
}

func (d *Directory) VehicleAssignments(ctx context.Context, vehicleID int) ([]booking.Assignment, error) {
	params := url.Values{"vehicle": {reference.New(reference.Vehicles, vehicleID).Path()}}
	return listAll(ctx, d, "/projectvehicles", params, func(dto vehicleAssignmentDTO) booking.Assignment {
		return toVehicleAssignment(dto, vehicleID)
	})
}

func (d *Directory) Appointments(ctx context.Context, crewID int) ([]booking.Appointment, error) {
	endpoint := "/crew/" + strconv.Itoa(crewID) + "/appointments"
	return listAll(ctx, d, endpoint, nil, func(dto appointmentDTO) booking.Appointment {
		return toAppointment(dto, crewID)
	})
}

func (d *Directory) AllFunctions(ctx context.Context) ([]booking.Function, error) {
	return listCached(ctx, d, "/projectfunctions", KeyAllFunctions, toFunction)
}

func (d *Directory) Function(ctx context.Context, id int) (booking.Function, error) {
	return getOne(ctx, d, reference.New(reference.ProjectFunctions, id).Path(), toFunction)
}

func (d *Directory) ProjectFunctions(ctx context.Context, projectID int) ([]booking.Function, error) {
	endpoint := reference.New(reference.Projects, projectID).Path() + "/projectfunctions"
	return listAll(ctx, d, endpoint, nil, toFunction)
}

func (d *Directory) FunctionCrewCount(ctx context.Context, functionID int) (int, error) {
	endpoint := reference.New(reference.ProjectFunctions, functionID).Path() + "/projectcrew"
	records, err := d.client.FetchAllPages(ctx, endpoint, nil, d.pageSize)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (d *Directory) AllProjects(ctx context.Context) ([]booking.Project, error) {
	return listCached(ctx, d, "/projects", KeyAllProjects, toProject)
}

func (d *Directory) Project(ctx context.Context, id int) (booking.Project, error) {
	return getOne(ctx, d, reference.New(reference.Projects, id).Path(), toProject)
}

func (d *Directory) AllSubprojects(ctx context.Context) ([]booking.Subproject, error) {
	return listCached(ctx, d, "/subprojects", KeyAllSubprojects, toSubproject)
}

func (d *Directory) AllStatuses(ctx context.Context) ([]booking.Status, error) {
	return listCached(ctx, d, "/"+reference.Statuses, KeyAllStatuses, toStatus)
}

func (d *Directory) AllContacts(ctx context.Context) ([]booking.Contact, error) {
	return listCached(ctx, d, "/contacts", KeyAllContacts, toContact)
}

func (d *Directory) Contact(ctx context.Context, id int) (booking.Contact, error) {
	return getOne(ctx, d, reference.New(reference.Contacts, id).Path(), toContact)
}

func (d *Directory) AllCrew(ctx context.Context) ([]booking.CrewMember, error) {
	return listCached(ctx, d, "/crew", KeyAllCrew, toCrewMember)
}

func (d *Directory) CrewMember(ctx context.Context, id int) (booking.CrewMember, error) {
	return getOne(ctx, d, reference.New(reference.Crew, id).Path(), toCrewMember)
}

func (d *Directory) AllVehicles(ctx context.Context) ([]booking.Vehicle, error) {
	return listCached(ctx, d, "/vehicles", KeyAllVehicles, toVehicle)
}
