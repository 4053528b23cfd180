package rentman

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexString accepts a JSON string, number or bool.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// tagList accepts the comma-separated string the API returns as well as an array.
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	var parts []string
	if b[0] == '[' {
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
	} else {
		var s flexString
		if err := s.UnmarshalJSON(b); err != nil {
			return err
		}
		parts = strings.Split(string(s), ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*t = out
	return nil
}

// flexInt accepts a JSON number or numeric string; anything else decodes as unset.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*f = flexInt{}
		return nil
	}
	*f = flexInt{Value: int(v), Set: true}
	return nil
}

func (f flexInt) Ptr() *int {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

type crewAssignmentDTO struct {
	ID              int        `json:"id"`
	Function        flexString `json:"function"`
	Crewmember      flexString `json:"crewmember"`
	PlanperiodStart flexString `json:"planperiod_start"`
	PlanperiodEnd   flexString `json:"planperiod_end"`
	Remark          flexString `json:"remark"`
	Displayname     flexString `json:"displayname"`
}

type vehicleAssignmentDTO struct {
	ID                  int        `json:"id"`
	Function            flexString `json:"function"`
	Vehicle             flexString `json:"vehicle"`
	PlanningperiodStart flexString `json:"planningperiod_start"`
	PlanningperiodEnd   flexString `json:"planningperiod_end"`
	Remark              flexString `json:"remark"`
	Displayname         flexString `json:"displayname"`
	Transport           flexString `json:"transport"`
}

type appointmentDTO struct {
	ID          int        `json:"id"`
	Name        flexString `json:"name"`
	Displayname flexString `json:"displayname"`
	Start       flexString `json:"start"`
	End         flexString `json:"end"`
	Remark      flexString `json:"remark"`
	Color       flexString `json:"color"`
	Location    flexString `json:"location"`
}

type functionDTO struct {
	ID              int        `json:"id"`
	Name            flexString `json:"name"`
	Displayname     flexString `json:"displayname"`
	Project         flexString `json:"project"`
	PlanperiodStart flexString `json:"planperiod_start"`
	PlanperiodEnd   flexString `json:"planperiod_end"`
	CrewmemberCount flexInt    `json:"crewmember_count"`
	Quantity        flexInt    `json:"quantity"`
	Remark          flexString `json:"remark"`
}

type projectDTO struct {
	ID              int        `json:"id"`
	Name            flexString `json:"name"`
	Displayname     flexString `json:"displayname"`
	Number          flexString `json:"number"`
	Color           flexString `json:"color"`
	Planningstate   flexString `json:"planningstate"`
	Status          flexString `json:"status"`
	Customer        flexString `json:"customer"`
	Location        flexString `json:"location"`
	AccountManager  flexString `json:"account_manager"`
	PlanperiodStart flexString `json:"planperiod_start"`
	PlanperiodEnd   flexString `json:"planperiod_end"`
}

type subprojectDTO struct {
	ID              int        `json:"id"`
	Name            flexString `json:"name"`
	Displayname     flexString `json:"displayname"`
	Project         flexString `json:"project"`
	Status          flexString `json:"status"`
	PlanperiodStart flexString `json:"planperiod_start"`
	PlanperiodEnd   flexString `json:"planperiod_end"`
	Location        flexString `json:"location"`
	InPlanning      *bool      `json:"in_planning"`
	InFinancial     *bool      `json:"in_financial"`
}

type statusDTO struct {
	ID          int        `json:"id"`
	Name        flexString `json:"name"`
	Displayname flexString `json:"displayname"`
}

type contactDTO struct {
	ID          int        `json:"id"`
	Name        flexString `json:"name"`
	Displayname flexString `json:"displayname"`
}

type crewDTO struct {
	ID          int        `json:"id"`
	Displayname flexString `json:"displayname"`
	Firstname   flexString `json:"firstname"`
	Lastname    flexString `json:"lastname"`
	Email       flexString `json:"email"`
	Phone       flexString `json:"phone"`
	Color       flexString `json:"color"`
	Active      *bool      `json:"active"`
	Tags        tagList    `json:"tags"`
}

type vehicleDTO struct {
	ID              int        `json:"id"`
	Name            flexString `json:"name"`
	Displayname     flexString `json:"displayname"`
	Licenseplate    flexString `json:"licenseplate"`
	Seats           flexInt    `json:"seats"`
	PayloadCapacity *float64   `json:"payload_capacity"`
	InPlanner       *bool      `json:"in_planner"`
	Tags            flexString `json:"tags"`
}

// unwrapData returns the "data" member of a single-entity response, or the body itself
// when the API answered with a bare object.
func unwrapData(body json.RawMessage) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return body
}
