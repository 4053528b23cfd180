package rentman

import (
	"strings"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

func str(f flexString) string {
	return strings.TrimSpace(string(f))
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func toCrewAssignment(d crewAssignmentDTO, crewID int) booking.Assignment {
	start, _ := booking.ParseTime(str(d.PlanperiodStart))
	end, _ := booking.ParseTime(str(d.PlanperiodEnd))
	if subject := reference.ParseIn(str(d.Crewmember), reference.Crew); subject.Resolved() {
		crewID = subject.ID()
	}
	return booking.Assignment{
		ID:          d.ID,
		Kind:        booking.KindCrew,
		SubjectID:   crewID,
		Start:       start,
		End:         end,
		Function:    reference.ParseIn(str(d.Function), reference.ProjectFunctions),
		Remark:      str(d.Remark),
		DisplayName: str(d.Displayname),
	}
}

func toVehicleAssignment(d vehicleAssignmentDTO, vehicleID int) booking.Assignment {
	start, _ := booking.ParseTime(str(d.PlanningperiodStart))
	end, _ := booking.ParseTime(str(d.PlanningperiodEnd))
	if subject := reference.ParseIn(str(d.Vehicle), reference.Vehicles); subject.Resolved() {
		vehicleID = subject.ID()
	}
	return booking.Assignment{
		ID:          d.ID,
		Kind:        booking.KindVehicle,
		SubjectID:   vehicleID,
		Start:       start,
		End:         end,
		Function:    reference.ParseIn(str(d.Function), reference.ProjectFunctions),
		Remark:      str(d.Remark),
		DisplayName: str(d.Displayname),
		Transport:   str(d.Transport),
	}
}

func toAppointment(d appointmentDTO, crewID int) booking.Appointment {
	start, _ := booking.ParseTime(str(d.Start))
	end, _ := booking.ParseTime(str(d.End))
	return booking.Appointment{
		ID:          d.ID,
		CrewID:      crewID,
		Name:        str(d.Name),
		DisplayName: str(d.Displayname),
		Start:       start,
		End:         end,
		Remark:      str(d.Remark),
		Color:       str(d.Color),
		Location:    str(d.Location),
	}
}

func toFunction(d functionDTO) booking.Function {
	start, _ := booking.ParseTime(str(d.PlanperiodStart))
	end, _ := booking.ParseTime(str(d.PlanperiodEnd))
	quantity := 1
	if d.Quantity.Set {
		quantity = d.Quantity.Value
	}
	return booking.Function{
		ID:        d.ID,
		Name:      booking.FirstName(booking.Value(str(d.Name)), booking.Value(str(d.Displayname))),
		Project:   reference.ParseIn(str(d.Project), reference.Projects),
		Start:     start,
		End:       end,
		CrewCount: d.CrewmemberCount.Ptr(),
		Quantity:  quantity,
		Remark:    str(d.Remark),
	}
}

func toProject(d projectDTO) booking.Project {
	start, _ := booking.ParseTime(str(d.PlanperiodStart))
	end, _ := booking.ParseTime(str(d.PlanperiodEnd))
	return booking.Project{
		ID:             d.ID,
		Name:           booking.FirstName(booking.Value(str(d.Displayname)), booking.Value(str(d.Name))),
		Number:         str(d.Number),
		Color:          str(d.Color),
		Status:         booking.FirstName(booking.Value(str(d.Planningstate)), booking.Value(str(d.Status))),
		Customer:       reference.ParseIn(str(d.Customer), reference.Contacts),
		Location:       reference.ParseIn(str(d.Location), reference.Contacts),
		AccountManager: reference.ParseIn(str(d.AccountManager), reference.Crew),
		Start:          start,
		End:            end,
	}
}

func toSubproject(d subprojectDTO) booking.Subproject {
	start, _ := booking.ParseTime(str(d.PlanperiodStart))
	end, _ := booking.ParseTime(str(d.PlanperiodEnd))
	return booking.Subproject{
		ID:          d.ID,
		Name:        booking.FirstName(booking.Value(str(d.Displayname)), booking.Value(str(d.Name)), booking.Value("Unnamed")),
		Project:     reference.ParseIn(str(d.Project), reference.Projects),
		Status:      reference.ParseIn(str(d.Status), reference.Statuses),
		Start:       start,
		End:         end,
		Location:    str(d.Location),
		InPlanning:  boolOr(d.InPlanning, true),
		InFinancial: boolOr(d.InFinancial, true),
	}
}

func toStatus(d statusDTO) booking.Status {
	return booking.Status{
		ID:   d.ID,
		Name: booking.FirstName(booking.Value(str(d.Name)), booking.Value(str(d.Displayname)), booking.Value("Unknown")),
	}
}

func toContact(d contactDTO) booking.Contact {
	return booking.Contact{
		ID:   d.ID,
		Name: booking.FirstName(booking.Value(str(d.Displayname)), booking.Value(str(d.Name))),
	}
}

func toCrewMember(d crewDTO) booking.CrewMember {
	first, last := str(d.Firstname), str(d.Lastname)
	return booking.CrewMember{
		ID: d.ID,
		Name: booking.FirstName(
			booking.Value(str(d.Displayname)),
			booking.Value(strings.TrimSpace(first+" "+last)),
			booking.Value("Unnamed"),
		),
		FirstName: first,
		LastName:  last,
		Email:     str(d.Email),
		Phone:     str(d.Phone),
		Color:     str(d.Color),
		Active:    boolOr(d.Active, true),
		Tags:      []string(d.Tags),
	}
}

func toVehicle(d vehicleDTO) booking.Vehicle {
	return booking.Vehicle{
		ID:              d.ID,
		Name:            booking.FirstName(booking.Value(str(d.Displayname)), booking.Value(str(d.Name)), booking.Value("Unnamed")),
		LicensePlate:    str(d.Licenseplate),
		Seats:           d.Seats.Ptr(),
		PayloadCapacity: d.PayloadCapacity,
		InPlanner:       boolOr(d.InPlanner, true),
		Tags:            str(d.Tags),
	}
}
