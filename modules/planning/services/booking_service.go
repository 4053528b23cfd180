package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

const dateLayout = "2006-01-02"

type Query struct {
	SubjectIDs          []int
	Start               time.Time
	End                 time.Time
	IncludeAppointments bool
}

type UnfilledQuery struct {
	Start      time.Time
	End        time.Time
	ProjectIDs []int
}

type Period struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

type Result struct {
	Bookings []booking.Booking `json:"data"`
	Count    int               `json:"count"`
	Period   Period            `json:"period"`
	Failures []Failure         `json:"failures,omitempty"`
}

func validatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return invalidQuery("startDate and endDate are required")
	}
	if booking.DayKey(end) < booking.DayKey(start) {
		return invalidQuery("endDate %s is before startDate %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return nil
}

// uniqueIDs drops non-positive and repeated ids, keeping the first occurrence.
func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func newResult(items []booking.Booking, start, end time.Time, failures []Failure) Result {
	if items == nil {
		items = []booking.Booking{}
	}
	booking.SortByStart(items)
	return Result{
		Bookings: items,
		Count:    len(items),
		Period:   Period{Start: start.Format(dateLayout), End: end.Format(dateLayout)},
		Failures: failures,
	}
}

type BookingService struct {
	repo        booking.Repository
	resolver    *EntityResolver
	builder     BookingBuilder
	concurrency int
	logger      *logrus.Entry
}

func NewBookingService(repo booking.Repository, resolver *EntityResolver, logger *logrus.Entry) *BookingService {
	if logger == nil {
		logger = logrusNop()
	}
	return &BookingService{
		repo:        repo,
		resolver:    resolver,
		concurrency: resolver.opts.Concurrency,
		logger:      logger.WithField("component", "bookings"),
	}
}

type assignmentLister func(ctx context.Context, subjectID int) ([]booking.Assignment, error)

// collect fetches each subject's assignments concurrently and keeps those touching
// [start, end]. A failing subject is reported and contributes nothing.
func (s *BookingService) collect(ctx context.Context, ids []int, collection string, list assignmentLister, start, end time.Time, diag *Diagnostics) []booking.Assignment {
	perSubject := make([][]booking.Assignment, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			items, err := list(ctx, id)
			if err != nil {
				s.logger.WithError(err).WithField("subject", id).Warn("assignment list failed")
				diag.Add(Failure{Collection: collection, SubjectID: id, Error: err.Error()})
				return nil
			}
			kept := make([]booking.Assignment, 0, len(items))
			for _, a := range items {
				if booking.WithinDays(a.Start, a.End, start, end) {
					kept = append(kept, a)
				}
			}
			perSubject[i] = kept
			return nil
		})
	}
	_ = g.Wait()

	var all []booking.Assignment
	for _, items := range perSubject {
		all = append(all, items...)
	}
	return all
}

// ResolveBookings returns the project bookings and, optionally, the appointments of
// the given crew members within the period.
func (s *BookingService) ResolveBookings(ctx context.Context, q Query) (Result, error) {
	if err := validatePeriod(q.Start, q.End); err != nil {
		return Result{}, err
	}
	ids := uniqueIDs(q.SubjectIDs)
	if len(ids) == 0 {
		return newResult(nil, q.Start, q.End, nil), nil
	}

	diag := &Diagnostics{}
	assignments := s.collect(ctx, ids, "projectcrew", s.repo.CrewAssignments, q.Start, q.End, diag)
	res := s.resolver.Resolve(ctx, assignments)
	diag.Merge(res.Failures)

	items := make([]booking.Booking, 0, len(assignments))
	for _, a := range assignments {
		if b := s.builder.Project(a, res); b.Valid() {
			items = append(items, b)
		}
	}

	if q.IncludeAppointments {
		items = append(items, s.appointments(ctx, ids, q.Start, q.End, diag)...)
	}

	s.logger.WithFields(logrus.Fields{
		"subjects":    len(ids),
		"assignments": len(assignments),
		"bookings":    len(items),
	}).Debug("resolved crew bookings")
	return newResult(items, q.Start, q.End, diag.Failures()), nil
}

func (s *BookingService) appointments(ctx context.Context, ids []int, start, end time.Time, diag *Diagnostics) []booking.Booking {
	var (
		mu  sync.Mutex
		out []booking.Booking
		g   errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			apts, err := s.repo.Appointments(ctx, id)
			if err != nil {
				s.logger.WithError(err).WithField("subject", id).Warn("appointment list failed")
				diag.Add(Failure{Collection: "appointments", SubjectID: id, Error: err.Error()})
				return nil
			}
			var kept []booking.Booking
			for _, apt := range apts {
				if !booking.WithinDays(apt.Start, apt.End, start, end) {
					continue
				}
				if b := s.builder.Appointment(apt); b.Valid() {
					kept = append(kept, b)
				}
			}
			mu.Lock()
			out = append(out, kept...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// VehicleBookings returns the bookings of the given vehicles within the period.
func (s *BookingService) VehicleBookings(ctx context.Context, q Query) (Result, error) {
	if err := validatePeriod(q.Start, q.End); err != nil {
		return Result{}, err
	}
	ids := uniqueIDs(q.SubjectIDs)
	if len(ids) == 0 {
		return newResult(nil, q.Start, q.End, nil), nil
	}

	diag := &Diagnostics{}
	assignments := s.collect(ctx, ids, "projectvehicles", s.repo.VehicleAssignments, q.Start, q.End, diag)
	res := s.resolver.Resolve(ctx, assignments)
	diag.Merge(res.Failures)

	items := make([]booking.Booking, 0, len(assignments))
	for _, a := range assignments {
		if b := s.builder.Vehicle(a, res); b.Valid() {
			items = append(items, b)
		}
	}
	return newResult(items, q.Start, q.End, diag.Failures()), nil
}

// Unfilled lists functions of confirmed projects in the period that have no crew.
// When the project list itself cannot be fetched the result is empty.
func (s *BookingService) Unfilled(ctx context.Context, q UnfilledQuery) (Result, error) {
	if err := validatePeriod(q.Start, q.End); err != nil {
		return Result{}, err
	}

	diag := &Diagnostics{}
	all, err := s.repo.AllProjects(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("project list failed")
		diag.Add(Failure{Collection: "projects", Error: err.Error()})
		return newResult(nil, q.Start, q.End, diag.Failures()), nil
	}

	filter := make(map[int]struct{}, len(q.ProjectIDs))
	for _, id := range uniqueIDs(q.ProjectIDs) {
		filter[id] = struct{}{}
	}
	var projects []booking.Project
	for _, p := range all {
		if len(filter) > 0 {
			if _, ok := filter[p.ID]; !ok {
				continue
			}
		}
		if !p.Confirmed() || !booking.WithinDays(p.Start, p.End, q.Start, q.End) {
			continue
		}
		projects = append(projects, p)
	}

	var (
		mu    sync.Mutex
		items []booking.Booking
		g     errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, p := range projects {
		g.Go(func() error {
			found := s.unfilledOf(ctx, p, q, diag)
			mu.Lock()
			items = append(items, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return newResult(items, q.Start, q.End, diag.Failures()), nil
}

func (s *BookingService) unfilledOf(ctx context.Context, p booking.Project, q UnfilledQuery, diag *Diagnostics) []booking.Booking {
	functions, err := s.repo.ProjectFunctions(ctx, p.ID)
	if err != nil {
		diag.Add(Failure{Collection: "projectfunctions", SubjectID: p.ID, Error: err.Error()})
		return nil
	}

	var out []booking.Booking
	for _, fn := range functions {
		b := s.builder.Unfilled(fn, p)
		if !b.Valid() || !booking.WithinDays(b.Start, b.End, q.Start, q.End) {
			continue
		}

		count := 0
		if fn.CrewCount != nil {
			count = *fn.CrewCount
		} else {
			n, err := s.repo.FunctionCrewCount(ctx, fn.ID)
			if err != nil {
				// counted as empty, matching the planner's own fallback
				diag.Add(Failure{Collection: "projectcrew", ID: fn.ID, Error: err.Error()})
			}
			count = n
		}
		if count == 0 {
			out = append(out, b)
		}
	}
	return out
}
