package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/crewplan/modules/planning/presentation/controllers/dtos"
	"github.com/iota-uz/crewplan/modules/planning/services"
	"github.com/iota-uz/crewplan/pkg/application"
	"github.com/iota-uz/crewplan/pkg/composables"
)

type BookingControllerConfig struct {
	BasePath    string
	App         application.Application
	Middlewares []mux.MiddlewareFunc
}

// BookingController serves resolved bookings: crew, vehicle, unfilled positions and
// the packed timeline.
type BookingController struct {
	basePath    string
	middlewares []mux.MiddlewareFunc
	bookings    *services.BookingService
	timeline    *services.TimelineService
}

func NewBookingController(cfg BookingControllerConfig) application.Controller {
	return &BookingController{
		basePath:    cfg.BasePath,
		middlewares: cfg.Middlewares,
		bookings:    cfg.App.Service(services.BookingService{}).(*services.BookingService),
		timeline:    cfg.App.Service(services.TimelineService{}).(*services.TimelineService),
	}
}

func (c *BookingController) Key() string {
	return "BookingController"
}

func (c *BookingController) Register(r *mux.Router) {
	router := newRouteGroup(r, c.basePath, c.middlewares)
	router.handle("/bookings", c.crewBookings, http.MethodGet)
	router.handle("/vehicles/bookings", c.vehicleBookings, http.MethodGet)
	router.handle("/unfilled", c.unfilled, http.MethodGet)
	router.handle("/timeline", c.timelineView, http.MethodGet)
}

func (c *BookingController) crewBookings(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.BookingsQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	ids, _ := dtos.ParseIDs(q.CrewIDs)
	start, end := q.Period()
	res, err := c.bookings.ResolveBookings(r.Context(), services.Query{
		SubjectIDs:          ids,
		Start:               start,
		End:                 end,
		IncludeAppointments: q.WithAppointments(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (c *BookingController) vehicleBookings(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.VehicleBookingsQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	ids, _ := dtos.ParseIDs(q.VehicleIDs)
	start, end := q.Period()
	res, err := c.bookings.VehicleBookings(r.Context(), services.Query{SubjectIDs: ids, Start: start, End: end})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (c *BookingController) unfilled(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.UnfilledQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	ids, _ := dtos.ParseIDs(q.ProjectIDs)
	start, end := q.Period()
	res, err := c.bookings.Unfilled(r.Context(), services.UnfilledQuery{Start: start, End: end, ProjectIDs: ids})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (c *BookingController) timelineView(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.TimelineQuery{}, r)
	if err != nil {
		writeValidationErrors(w, r, map[string]string{"query": err.Error()})
		return
	}
	if errs, ok := q.Ok(); !ok {
		writeValidationErrors(w, r, errs)
		return
	}

	mode, _ := services.ParseMode(q.Mode)
	ids, _ := dtos.ParseIDs(q.CrewIDs)
	start, end := q.Period()
	res, err := c.timeline.Timeline(r.Context(), services.TimelineQuery{
		Query: services.Query{
			SubjectIDs:          ids,
			Start:               start,
			End:                 end,
			IncludeAppointments: q.WithAppointments(),
		},
		Mode: mode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
