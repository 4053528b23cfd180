package dtos

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/crewplan/pkg/constants"
)

const DateLayout = "2006-01-02"

type BookingsQuery struct {
	StartDate           string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate             string `form:"endDate" validate:"required,datetime=2006-01-02"`
	CrewIDs             string `form:"crewIds" validate:"omitempty,idlist"`
	IncludeAppointments string `form:"includeAppointments"`
}

// WithAppointments is true unless includeAppointments is exactly "false".
func (q *BookingsQuery) WithAppointments() bool {
	return q.IncludeAppointments != "false"
}

func (q *BookingsQuery) Period() (time.Time, time.Time) {
	return parsePeriod(q.StartDate, q.EndDate)
}

func (q *BookingsQuery) Ok() (map[string]string, bool) {
	return validate(q)
}

type VehicleBookingsQuery struct {
	StartDate  string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `form:"endDate" validate:"required,datetime=2006-01-02"`
	VehicleIDs string `form:"vehicleIds" validate:"omitempty,idlist"`
}

func (q *VehicleBookingsQuery) Period() (time.Time, time.Time) {
	return parsePeriod(q.StartDate, q.EndDate)
}

func (q *VehicleBookingsQuery) Ok() (map[string]string, bool) {
	return validate(q)
}

type UnfilledQuery struct {
	StartDate  string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `form:"endDate" validate:"required,datetime=2006-01-02"`
	ProjectIDs string `form:"projectIds" validate:"omitempty,idlist"`
}

func (q *UnfilledQuery) Period() (time.Time, time.Time) {
	return parsePeriod(q.StartDate, q.EndDate)
}

func (q *UnfilledQuery) Ok() (map[string]string, bool) {
	return validate(q)
}

type TimelineQuery struct {
	StartDate           string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate             string `form:"endDate" validate:"required,datetime=2006-01-02"`
	CrewIDs             string `form:"crewIds" validate:"omitempty,idlist"`
	IncludeAppointments string `form:"includeAppointments"`
	Mode                string `form:"mode" validate:"omitempty,oneof=crew project"`
}

func (q *TimelineQuery) WithAppointments() bool {
	return q.IncludeAppointments != "false"
}

func (q *TimelineQuery) Period() (time.Time, time.Time) {
	return parsePeriod(q.StartDate, q.EndDate)
}

func (q *TimelineQuery) Ok() (map[string]string, bool) {
	return validate(q)
}

type CrewQuery struct {
	Tag    string `form:"tag"`
	Active string `form:"active" validate:"omitempty,oneof=true false 1 0"`
	Q      string `form:"q"`
}

func (q *CrewQuery) ActiveOnly() bool {
	return q.Active == "true" || q.Active == "1"
}

func (q *CrewQuery) Ok() (map[string]string, bool) {
	return validate(q)
}

// ProjectsQuery takes an optional period: both dates or neither.
type ProjectsQuery struct {
	StartDate string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// Period returns zero times when no period was given.
func (q *ProjectsQuery) Period() (time.Time, time.Time) {
	return parsePeriod(q.StartDate, q.EndDate)
}

func (q *ProjectsQuery) Ok() (map[string]string, bool) {
	errorMessages, ok := validate(q)
	if (q.StartDate == "") != (q.EndDate == "") {
		if q.StartDate == "" {
			errorMessages["startDate"] = "is required"
		} else {
			errorMessages["endDate"] = "is required"
		}
		ok = false
	}
	return errorMessages, ok
}

type WarmupQuery struct {
	Tag  string `form:"tag"`
	Days int    `form:"days" validate:"gte=0"`
}

func (q *WarmupQuery) Ok() (map[string]string, bool) {
	return validate(q)
}

func init() {
	if err := constants.Validate.RegisterValidation("idlist", func(fl validator.FieldLevel) bool {
		_, err := ParseIDs(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
}

func parsePeriod(startDate, endDate string) (time.Time, time.Time) {
	start, _ := time.Parse(DateLayout, startDate)
	end, _ := time.Parse(DateLayout, endDate)
	return start, end
}

func validate(d any) (map[string]string, bool) {
	errorMessages := map[string]string{}
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return errorMessages, true
	}
	verrs, ok := errs.(validator.ValidationErrors)
	if !ok {
		errorMessages["query"] = errs.Error()
		return errorMessages, false
	}
	for _, err := range verrs {
		errorMessages[paramName(err.Field())] = message(err)
	}
	return errorMessages, false
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	case "idlist":
		return "must be a comma-separated list of numeric ids"
	case "oneof":
		return "must be one of: " + err.Param()
	case "gte":
		return "must be at least " + err.Param()
	}
	return "is invalid"
}

// paramName maps a struct field back to its query parameter name.
func paramName(field string) string {
	switch field {
	case "CrewIDs":
		return "crewIds"
	case "VehicleIDs":
		return "vehicleIds"
	case "ProjectIDs":
		return "projectIds"
	case "Q":
		return "q"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// ParseIDs splits a comma-separated id list. Empty items are skipped; anything
// that is not a positive integer is an error.
func ParseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
