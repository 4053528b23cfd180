package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPlaceholder("Display name"))
	assert.True(t, IsPlaceholder("PLANNINGPERSONELL"))
	assert.True(t, IsPlaceholder("Crew - Planning Personnel 3"))
	assert.False(t, IsPlaceholder("Festival stage A"))
	assert.False(t, IsPlaceholder(""))
}

func TestProjectNameChain_Precedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		project   string
		function  string
		display   string
		projectID int
		want      string
	}{
		{name: "project wins", project: "Summer Gala", function: "Rigger", display: "Gig", projectID: 4, want: "Summer Gala"},
		{name: "function when project missing", function: "Rigger", display: "Gig", projectID: 4, want: "Rigger"},
		{name: "display name third", display: "Gig", projectID: 4, want: "Gig"},
		{name: "placeholder display skipped", display: "Display", projectID: 4, want: "Project #4"},
		{name: "unknown project id", display: "  ", want: "Project #unknown"},
		{name: "blank values are skipped", project: "  ", function: "\t", display: "Gig", want: "Gig"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FirstName(ProjectNameChain(tc.project, tc.function, tc.display, tc.projectID)...)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRole_FallsBackToProjectName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Light tech", Role("Light tech", "Gala"))
	assert.Equal(t, "Gala", Role("", "Gala"))
}

func TestFirstName_SkipsNilCandidates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", FirstName(nil, Value(""), Value("x")))
	assert.Empty(t, FirstName())
}

func TestBooking_Confirmed(t *testing.T) {
	t.Parallel()

	assert.True(t, Booking{Type: TypeProject}.Confirmed())
	assert.True(t, Booking{Type: TypeProject, Status: StringPtr("Confirmed")}.Confirmed())
	assert.False(t, Booking{Type: TypeProject, Status: StringPtr("option")}.Confirmed())
	assert.True(t, Booking{Type: TypeAppointment, Status: StringPtr("option")}.Confirmed())
}

func TestProject_Confirmed(t *testing.T) {
	t.Parallel()

	assert.True(t, Project{Status: "confirmed"}.Confirmed())
	assert.True(t, Project{Status: " CONFIRMED "}.Confirmed())
	assert.False(t, Project{Status: "Concept"}.Confirmed())
	assert.False(t, Project{}.Confirmed())
}

func TestParseTimeAndDays(t *testing.T) {
	t.Parallel()

	ts, ok := ParseTime("2024-01-01T08:00:00+01:00")
	require.True(t, ok)
	assert.Equal(t, 20240101, DayKey(ts))

	_, ok = ParseTime("not a date")
	assert.False(t, ok)

	day, ok := ParseTime("2024-01-03")
	require.True(t, ok)
	assert.Equal(t, time.UTC, day.Location())

	from, _ := ParseTime("2024-01-02")
	to, _ := ParseTime("2024-01-04")
	start, _ := ParseTime("2024-01-01T22:00:00")
	end, _ := ParseTime("2024-01-02T01:00:00")
	assert.True(t, WithinDays(start, end, from, to))
	assert.False(t, WithinDays(start, start, from, to))
	assert.False(t, WithinDays(time.Time{}, end, from, to))
}

func TestBooking_GroupKeyAndValid(t *testing.T) {
	t.Parallel()

	start, _ := ParseTime("2024-01-01T08:00:00Z")
	end, _ := ParseTime("2024-01-01T12:00:00Z")

	b := Booking{ProjectID: IntPtr(9), ProjectName: "Gala", Start: start, End: end}
	assert.Equal(t, "project:9", b.GroupKey())
	assert.True(t, b.Valid())

	b.ProjectID = nil
	assert.Equal(t, "name:Gala", b.GroupKey())

	b.Start, b.End = end, start
	assert.False(t, b.Valid())
	assert.Nil(t, IntPtr(0))
	assert.Nil(t, StringPtr("  "))
}
