package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

func newBookingService(repo *fakeRepository, strategy Strategy) *BookingService {
	resolver := NewEntityResolver(repo, ResolverOptions{Strategy: strategy})
	return NewBookingService(repo, resolver, nil)
}

func june() Query {
	return Query{Start: day("2024-06-01"), End: day("2024-06-30")}
}

func ids(items []booking.Booking) []string {
	out := make([]string, 0, len(items))
	for _, b := range items {
		out = append(out, b.ID)
	}
	return out
}

func TestResolveBookings_ResolvesProjectsAndFiltersPeriod(t *testing.T) {
	t.Parallel()

	svc := newBookingService(plannedWorld(), StrategyAuto)
	q := june()
	q.SubjectIDs = []int{1, 2, 2, 0}

	res, err := svc.ResolveBookings(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "501", "502", "503"}, ids(res.Bookings))
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, Period{Start: "2024-06-01", End: "2024-06-30"}, res.Period)
	assert.Empty(t, res.Failures)

	b := res.Bookings[0]
	assert.Equal(t, booking.TypeProject, b.Type)
	assert.Equal(t, 1, b.SubjectID)
	assert.Equal(t, "Summer Tour", b.ProjectName)
	assert.Equal(t, "Rigger", b.Role)
	require.NotNil(t, b.ProjectID)
	assert.Equal(t, 100, *b.ProjectID)
	require.NotNil(t, b.Customer)
	assert.Equal(t, "Acme AB", *b.Customer)
	require.NotNil(t, b.AccountManager)
	assert.Equal(t, "Maja Chef", *b.AccountManager)
	require.NotNil(t, b.FunctionID)
	assert.Equal(t, 10, *b.FunctionID)

	assert.Equal(t, "Gala", res.Bookings[1].ProjectName)
}

func TestResolveBookings_StrategiesAgree(t *testing.T) {
	t.Parallel()

	q := june()
	q.SubjectIDs = []int{1, 2}

	bulk, err := newBookingService(plannedWorld(), StrategyBulk).ResolveBookings(context.Background(), q)
	require.NoError(t, err)
	individual, err := newBookingService(plannedWorld(), StrategyIndividual).ResolveBookings(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, bulk.Bookings, individual.Bookings)
}

func TestResolveBookings_MissingFunctionFallsBack(t *testing.T) {
	t.Parallel()

	repo := plannedWorld()
	repo.crewAssignments[2] = append(repo.crewAssignments[2],
		assignment(504, 2, 999, "2024-06-07T08:00:00Z", "2024-06-07T12:00:00Z", "Stage build"),
		assignment(505, 2, 998, "2024-06-08T08:00:00Z", "2024-06-08T12:00:00Z", "Planning personnel"),
	)
	svc := newBookingService(repo, StrategyIndividual)
	q := june()
	q.SubjectIDs = []int{1, 2}

	res, err := svc.ResolveBookings(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 6, res.Count)

	named := res.Bookings[4]
	assert.Equal(t, "504", named.ID)
	assert.Equal(t, "Stage build", named.ProjectName)
	assert.Equal(t, "Stage build", named.Role)
	assert.Nil(t, named.ProjectID)
	require.NotNil(t, named.FunctionID)
	assert.Equal(t, 999, *named.FunctionID)

	placeholder := res.Bookings[5]
	assert.Equal(t, "Project #unknown", placeholder.ProjectName)

	assert.Equal(t, "Summer Tour", res.Bookings[0].ProjectName)
	require.Len(t, res.Failures, 2)
	for _, f := range res.Failures {
		assert.Equal(t, reference.ProjectFunctions, f.Collection)
	}
}

func TestResolveBookings_SubjectFailureIsIsolated(t *testing.T) {
	t.Parallel()

	repo := plannedWorld()
	repo.fail["crew:2"] = true
	svc := newBookingService(repo, StrategyAuto)
	q := june()
	q.SubjectIDs = []int{1, 2}

	res, err := svc.ResolveBookings(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "501"}, ids(res.Bookings))
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].SubjectID)
	assert.Equal(t, "projectcrew", res.Failures[0].Collection)
}

func TestResolveBookings_Appointments(t *testing.T) {
	t.Parallel()

	repo := plannedWorld()
	repo.appointments[1] = []booking.Appointment{
		{ID: 70, CrewID: 1, Name: "Doctor", Start: day("2024-06-05T09:00:00Z"), End: day("2024-06-05T10:00:00Z")},
		{ID: 71, CrewID: 1, Start: day("2024-07-05T09:00:00Z"), End: day("2024-07-05T10:00:00Z")},
	}
	svc := newBookingService(repo, StrategyAuto)
	q := june()
	q.SubjectIDs = []int{1}

	res, err := svc.ResolveBookings(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "501"}, ids(res.Bookings))

	q.IncludeAppointments = true
	res, err = svc.ResolveBookings(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "501", "apt_70"}, ids(res.Bookings))
	apt := res.Bookings[2]
	assert.Equal(t, booking.TypeAppointment, apt.Type)
	assert.Equal(t, "Doctor", apt.ProjectName)
	assert.Nil(t, apt.ProjectID)
}

func TestResolveBookings_InvalidPeriod(t *testing.T) {
	t.Parallel()

	svc := newBookingService(plannedWorld(), StrategyAuto)

	_, err := svc.ResolveBookings(context.Background(), Query{SubjectIDs: []int{1}, Start: day("2024-06-10"), End: day("2024-06-01")})
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.ResolveBookings(context.Background(), Query{SubjectIDs: []int{1}, End: day("2024-06-01")})
	require.ErrorIs(t, err, ErrInvalidQuery)

	res, err := svc.ResolveBookings(context.Background(), june())
	require.NoError(t, err)
	assert.NotNil(t, res.Bookings)
	assert.Zero(t, res.Count)
}

func TestVehicleBookings(t *testing.T) {
	t.Parallel()

	repo := plannedWorld()
	a := assignment(800, 5, 10, "2024-06-02T06:00:00Z", "2024-06-02T20:00:00Z", "")
	a.Kind = booking.KindVehicle
	b := assignment(801, 5, 10, "2024-06-03T06:00:00Z", "2024-06-03T20:00:00Z", "")
	b.Kind = booking.KindVehicle
	b.Transport = "Truck 1"
	repo.vehicleAssignments[5] = []booking.Assignment{a, b}
	svc := newBookingService(repo, StrategyAuto)
	q := june()
	q.SubjectIDs = []int{5}

	res, err := svc.VehicleBookings(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"vehicle_800", "vehicle_801"}, ids(res.Bookings))
	assert.Equal(t, booking.TypeVehicle, res.Bookings[0].Type)
	assert.Equal(t, "Transport", res.Bookings[0].Role)
	assert.Equal(t, "Truck 1", res.Bookings[1].Role)
	assert.Equal(t, "Summer Tour", res.Bookings[0].ProjectName)
}

func TestUnfilled_ConfirmedProjectsWithoutCrew(t *testing.T) {
	t.Parallel()

	repo := plannedWorld()
	svc := newBookingService(repo, StrategyAuto)

	res, err := svc.Unfilled(context.Background(), UnfilledQuery{Start: day("2024-06-01"), End: day("2024-06-30")})
	require.NoError(t, err)
	assert.Equal(t, []string{"unfilled_10", "unfilled_12"}, ids(res.Bookings))
	assert.Empty(t, res.Failures)

	rigger := res.Bookings[0]
	assert.Equal(t, booking.TypeUnfilled, rigger.Type)
	assert.Equal(t, day("2024-06-01T00:00:00Z"), rigger.Start, "window falls back to the project's")
	assert.Equal(t, "Summer Tour", rigger.ProjectName)
	assert.Equal(t, "Rigger", rigger.Role)

	sound := res.Bookings[1]
	require.NotNil(t, sound.Quantity)
	assert.Equal(t, 2, *sound.Quantity)

	assert.Zero(t, repo.count("crewcount:10"), "an embedded crew count is trusted")
	assert.Equal(t, 1, repo.count("crewcount:12"))
	assert.Zero(t, repo.count("projectfunctions:101"), "unconfirmed projects are skipped")
}

func TestUnfilled_Degradation(t *testing.T) {
	t.Parallel()

	q := UnfilledQuery{Start: day("2024-06-01"), End: day("2024-06-30")}

	t.Run("crew count failure counts as empty", func(t *testing.T) {
		repo := plannedWorld()
		repo.fail["crewcount:12"] = true
		res, err := newBookingService(repo, StrategyAuto).Unfilled(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []string{"unfilled_10", "unfilled_12"}, ids(res.Bookings))
		require.Len(t, res.Failures, 1)
		assert.Equal(t, 12, res.Failures[0].ID)
	})

	t.Run("project list failure", func(t *testing.T) {
		repo := plannedWorld()
		repo.fail["projects:all"] = true
		res, err := newBookingService(repo, StrategyAuto).Unfilled(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, res.Bookings)
		require.Len(t, res.Failures, 1)
	})

	t.Run("project filter", func(t *testing.T) {
		repo := plannedWorld()
		filtered := q
		filtered.ProjectIDs = []int{101}
		res, err := newBookingService(repo, StrategyAuto).Unfilled(context.Background(), filtered)
		require.NoError(t, err)
		assert.Empty(t, res.Bookings)
	})
}
