package booking

import "context"

// Repository is the read side of the upstream planning platform.
// Every method may return an upstream failure; callers decide how far it propagates.
type Repository interface {
	CrewAssignments(ctx context.Context, crewID int) ([]Assignment, error)
	VehicleAssignments(ctx context.Context, vehicleID int) ([]Assignment, error)
	Appointments(ctx context.Context, crewID int) ([]Appointment, error)

	AllFunctions(ctx context.Context) ([]Function, error)
	Function(ctx context.Context, id int) (Function, error)
	ProjectFunctions(ctx context.Context, projectID int) ([]Function, error)
	FunctionCrewCount(ctx context.Context, functionID int) (int, error)

	AllProjects(ctx context.Context) ([]Project, error)
	Project(ctx context.Context, id int) (Project, error)

	AllSubprojects(ctx context.Context) ([]Subproject, error)
	AllStatuses(ctx context.Context) ([]Status, error)

	AllContacts(ctx context.Context) ([]Contact, error)
	Contact(ctx context.Context, id int) (Contact, error)

	AllCrew(ctx context.Context) ([]CrewMember, error)
	CrewMember(ctx context.Context, id int) (CrewMember, error)

	AllVehicles(ctx context.Context) ([]Vehicle, error)
}
