package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWarmupService(repo *fakeRepository, defaultTag string) *WarmupService {
	resolver := NewEntityResolver(repo, ResolverOptions{})
	svc := NewWarmupService(repo, NewBookingService(repo, resolver, nil), resolver, defaultTag, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC) }
	return svc
}

func TestClampWarmupDays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ClampWarmupDays(0))
	assert.Equal(t, 7, ClampWarmupDays(3))
	assert.Equal(t, 60, ClampWarmupDays(60))
	assert.Equal(t, 180, ClampWarmupDays(365))
}

func TestWarmup_FetchesTaggedCrew(t *testing.T) {
	t.Parallel()

	repo := plannedWorld()
	report, err := newWarmupService(repo, "Tekniker").Warm(context.Background(), "", 1)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, "Tekniker", report.Tag)
	assert.Equal(t, Period{Start: "2024-06-01", End: "2024-06-08"}, report.Period)
	assert.Equal(t, 2, report.CrewFound)
	assert.Equal(t, 4, report.AssignmentsCached)
	assert.Equal(t, 3, report.FunctionsCached)
	assert.Equal(t, 2, report.ProjectsCached)
	assert.Empty(t, report.Errors)
	assert.Zero(t, repo.count("crew:3"), "untagged crew is not fetched")
}

func TestWarmup_ReportsFailures(t *testing.T) {
	t.Parallel()

	repo := plannedWorld()
	repo.fail["crew:2"] = true
	report, err := newWarmupService(repo, "").Warm(context.Background(), "Tekniker", 30)
	require.NoError(t, err)
	assert.False(t, report.Success)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "for 2")

	repo = plannedWorld()
	repo.fail["crew:all"] = true
	report, err = newWarmupService(repo, "").Warm(context.Background(), "Tekniker", 30)
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Zero(t, report.CrewFound)
}

func TestWarmup_RequiresTag(t *testing.T) {
	t.Parallel()

	_, err := newWarmupService(plannedWorld(), "").Warm(context.Background(), "", 30)
	require.ErrorIs(t, err, ErrInvalidQuery)
}
