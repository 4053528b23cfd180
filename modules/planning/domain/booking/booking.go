package booking

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeProject     Type = "project"
	TypeAppointment Type = "appointment"
	TypeVehicle     Type = "vehicle"
	TypeUnfilled    Type = "unfilled"
)

// Booking is the resolved, display-ready unit handed to the presentation layer.
type Booking struct {
	ID             string    `json:"id"`
	Type           Type      `json:"type"`
	SubjectID      int       `json:"subjectId"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	ProjectID      *int      `json:"projectId"`
	ProjectName    string    `json:"projectName"`
	ProjectNumber  *string   `json:"projectNumber,omitempty"`
	Color          *string   `json:"color"`
	Status         *string   `json:"status"`
	Role           string    `json:"role"`
	Remark         *string   `json:"remark"`
	Customer       *string   `json:"customer,omitempty"`
	Location       *string   `json:"location,omitempty"`
	AccountManager *string   `json:"accountManager,omitempty"`
	FunctionID     *int      `json:"functionId,omitempty"`
	Quantity       *int      `json:"quantity,omitempty"`
}

// Valid reports whether the booking has a usable time window.
func (b Booking) Valid() bool {
	return !b.Start.IsZero() && !b.End.IsZero() && !b.End.Before(b.Start)
}

// Confirmed treats appointments and bookings without a status as confirmed.
func (b Booking) Confirmed() bool {
	if b.Type == TypeAppointment || b.Status == nil {
		return true
	}
	s := strings.ToLower(strings.TrimSpace(*b.Status))
	return s == "" || s == "confirmed"
}

// GroupKey identifies the project lane a booking belongs to in project view.
func (b Booking) GroupKey() string {
	if b.ProjectID != nil {
		return "project:" + strconv.Itoa(*b.ProjectID)
	}
	return "name:" + b.ProjectName
}

// Kind distinguishes what an assignment books.
type Kind string

const (
	KindCrew    Kind = "crew"
	KindVehicle Kind = "vehicle"
)

// StringPtr returns nil for blank strings so optional JSON fields render as null.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func IntPtr(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// SortByStart orders bookings by start time, then by ID for a stable result.
func SortByStart(items []Booking) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Start.Equal(items[j].Start) {
			return items[i].Start.Before(items[j].Start)
		}
		return items[i].ID < items[j].ID
	})
}
