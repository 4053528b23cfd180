package booking

import (
	"strings"
	"time"

	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

// Assignment links a subject (crew member or vehicle) to a time window and a function.
type Assignment struct {
	ID          int
	Kind        Kind
	SubjectID   int
	Start       time.Time
	End         time.Time
	Function    reference.Reference
	Remark      string
	DisplayName string
	Transport   string
}

// Appointment is a non-project calendar entry of a crew member.
type Appointment struct {
	ID          int
	CrewID      int
	Name        string
	DisplayName string
	Start       time.Time
	End         time.Time
	Remark      string
	Color       string
	Location    string
}

// Function is a role/position within a project.
type Function struct {
	ID        int
	Name      string
	Project   reference.Reference
	Start     time.Time
	End       time.Time
	CrewCount *int
	Quantity  int
	Remark    string
}

type Project struct {
	ID             int
	Name           string
	Number         string
	Color          string
	Status         string
	Customer       reference.Reference
	Location       reference.Reference
	AccountManager reference.Reference
	Start          time.Time
	End            time.Time
}

// Confirmed reports whether the project's planning state is "confirmed".
func (p Project) Confirmed() bool {
	return equalFold(p.Status, "confirmed")
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}

// Subproject is a phase of a project with its own planning window and status.
type Subproject struct {
	ID          int
	Name        string
	Project     reference.Reference
	Status      reference.Reference
	Start       time.Time
	End         time.Time
	Location    string
	InPlanning  bool
	InFinancial bool
}

// Status is an entry of the upstream status catalogue.
type Status struct {
	ID   int
	Name string
}

type Contact struct {
	ID   int
	Name string
}

type CrewMember struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Color     string   `json:"color,omitempty"`
	Active    bool     `json:"active"`
	Tags      []string `json:"tags"`
}

// HasTag matches tags exactly, the way the planner's tag filter does.
func (c CrewMember) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type Vehicle struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	LicensePlate    string   `json:"licensePlate,omitempty"`
	Seats           *int     `json:"seats"`
	PayloadCapacity *float64 `json:"payloadCapacity"`
	InPlanner       bool     `json:"inPlanner"`
	Tags            string   `json:"tags,omitempty"`
}

// FunctionInfo is the resolved view of a function used while building bookings.
type FunctionInfo struct {
	ID        int
	Name      string
	ProjectID int
}

// ProjectInfo is the resolved view of a project, with contact names filled in by
// the second resolution pass.
type ProjectInfo struct {
	ID                 int
	Name               string
	Number             string
	Color              string
	Status             string
	CustomerID         int
	LocationID         int
	AccountManagerID   int
	CustomerName       string
	LocationName       string
	AccountManagerName string
}

func NewFunctionInfo(f Function) FunctionInfo {
	return FunctionInfo{ID: f.ID, Name: f.Name, ProjectID: f.Project.ID()}
}

func NewProjectInfo(p Project) ProjectInfo {
	return ProjectInfo{
		ID:               p.ID,
		Name:             p.Name,
		Number:           p.Number,
		Color:            p.Color,
		Status:           p.Status,
		CustomerID:       p.Customer.ID(),
		LocationID:       p.Location.ID(),
		AccountManagerID: p.AccountManager.ID(),
	}
}
