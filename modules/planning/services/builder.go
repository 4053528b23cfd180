package services

import (
	"strconv"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

const (
	appointmentLabel = "Appointment"
	transportLabel   = "Transport"
	unknownRoleLabel = "Unknown role"
)

// BookingBuilder merges raw records with a Resolution into display-ready bookings.
// It never fails; missing references fall back along the project-name chain.
type BookingBuilder struct{}

func (BookingBuilder) lookup(a booking.Assignment, res Resolution) (booking.FunctionInfo, booking.ProjectInfo, int) {
	fn, ok := res.Functions[a.Function.ID()]
	if !ok || !a.Function.Resolved() {
		return booking.FunctionInfo{}, booking.ProjectInfo{}, 0
	}
	project := res.Projects[fn.ProjectID]
	return fn, project, fn.ProjectID
}

func withProject(b booking.Booking, p booking.ProjectInfo) booking.Booking {
	b.ProjectNumber = booking.StringPtr(p.Number)
	b.Color = booking.StringPtr(p.Color)
	b.Status = booking.StringPtr(p.Status)
	b.Customer = booking.StringPtr(p.CustomerName)
	b.Location = booking.StringPtr(p.LocationName)
	b.AccountManager = booking.StringPtr(p.AccountManagerName)
	return b
}

// Project builds the booking of a crew assignment.
func (bb BookingBuilder) Project(a booking.Assignment, res Resolution) booking.Booking {
	fn, project, projectID := bb.lookup(a, res)
	name := booking.FirstName(booking.ProjectNameChain(project.Name, fn.Name, a.DisplayName, projectID)...)

	return withProject(booking.Booking{
		ID:          strconv.Itoa(a.ID),
		Type:        booking.TypeProject,
		SubjectID:   a.SubjectID,
		Start:       a.Start,
		End:         a.End,
		ProjectID:   booking.IntPtr(projectID),
		ProjectName: name,
		Role:        booking.Role(fn.Name, name),
		Remark:      booking.StringPtr(a.Remark),
		FunctionID:  booking.IntPtr(a.Function.ID()),
	}, project)
}

// Vehicle builds the booking of a vehicle assignment; its role is the transport label.
func (bb BookingBuilder) Vehicle(a booking.Assignment, res Resolution) booking.Booking {
	fn, project, projectID := bb.lookup(a, res)
	name := booking.FirstName(booking.ProjectNameChain(project.Name, fn.Name, a.DisplayName, projectID)...)

	return withProject(booking.Booking{
		ID:          "vehicle_" + strconv.Itoa(a.ID),
		Type:        booking.TypeVehicle,
		SubjectID:   a.SubjectID,
		Start:       a.Start,
		End:         a.End,
		ProjectID:   booking.IntPtr(projectID),
		ProjectName: name,
		Role:        booking.FirstName(booking.Value(a.Transport), booking.Value(transportLabel)),
		Remark:      booking.StringPtr(a.Remark),
		FunctionID:  booking.IntPtr(a.Function.ID()),
	}, project)
}

// Appointment maps a calendar entry 1:1, without project resolution.
func (BookingBuilder) Appointment(apt booking.Appointment) booking.Booking {
	name := booking.FirstName(booking.Value(apt.DisplayName), booking.Value(apt.Name), booking.Value(appointmentLabel))
	return booking.Booking{
		ID:          "apt_" + strconv.Itoa(apt.ID),
		Type:        booking.TypeAppointment,
		SubjectID:   apt.CrewID,
		Start:       apt.Start,
		End:         apt.End,
		ProjectName: name,
		Role:        name,
		Color:       booking.StringPtr(apt.Color),
		Remark:      booking.StringPtr(apt.Remark),
		Location:    booking.StringPtr(apt.Location),
	}
}

// Unfilled builds the booking of a function nobody is assigned to. The window falls
// back to the project's when the function has none.
func (BookingBuilder) Unfilled(fn booking.Function, project booking.Project) booking.Booking {
	start, end := fn.Start, fn.End
	if start.IsZero() {
		start = project.Start
	}
	if end.IsZero() {
		end = project.End
	}
	name := booking.FirstName(booking.Value(project.Name), booking.Value(booking.SynthesizedProjectName(project.ID)))

	return withProject(booking.Booking{
		ID:          "unfilled_" + strconv.Itoa(fn.ID),
		Type:        booking.TypeUnfilled,
		Start:       start,
		End:         end,
		ProjectID:   booking.IntPtr(project.ID),
		ProjectName: name,
		Role:        booking.FirstName(booking.Value(fn.Name), booking.Value(unknownRoleLabel)),
		Remark:      booking.StringPtr(fn.Remark),
		FunctionID:  booking.IntPtr(fn.ID),
		Quantity:    booking.IntPtr(fn.Quantity),
	}, booking.NewProjectInfo(project))
}
