package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
)

const (
	MinWarmupDays     = 7
	MaxWarmupDays     = 180
	DefaultWarmupDays = 60
)

func ClampWarmupDays(days int) int {
	return max(MinWarmupDays, min(MaxWarmupDays, days))
}

type WarmupReport struct {
	Success           bool     `json:"success"`
	Message           string   `json:"message"`
	Tag               string   `json:"tag"`
	Period            Period   `json:"period"`
	CrewFound         int      `json:"crewFound"`
	AssignmentsCached int      `json:"assignmentsCached"`
	FunctionsCached   int      `json:"functionsCached"`
	ProjectsCached    int      `json:"projectsCached"`
	Errors            []string `json:"errors"`
	DurationSeconds   float64  `json:"durationSeconds"`
}

// WarmupService pre-fetches the assignments, functions and projects of every crew
// member carrying a tag, so that later booking queries are served from cache.
type WarmupService struct {
	repo       booking.Repository
	bookings   *BookingService
	resolver   *EntityResolver
	defaultTag string
	now        func() time.Time
	logger     *logrus.Entry
}

func NewWarmupService(repo booking.Repository, bookings *BookingService, resolver *EntityResolver, defaultTag string, logger *logrus.Entry) *WarmupService {
	if logger == nil {
		logger = logrusNop()
	}
	return &WarmupService{
		repo:       repo,
		bookings:   bookings,
		resolver:   resolver,
		defaultTag: defaultTag,
		now:        time.Now,
		logger:     logger.WithField("component", "warmup"),
	}
}

func (s *WarmupService) Warm(ctx context.Context, tag string, days int) (WarmupReport, error) {
	started := time.Now()
	if tag == "" {
		tag = s.defaultTag
	}
	if tag == "" {
		return WarmupReport{}, invalidQuery("tag is required")
	}
	days = ClampWarmupDays(days)

	y, m, d := s.now().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days)

	report := WarmupReport{
		Tag:    tag,
		Period: Period{Start: start.Format(dateLayout), End: end.Format(dateLayout)},
		Errors: []string{},
	}
	finish := func() WarmupReport {
		report.Success = len(report.Errors) == 0
		report.DurationSeconds = time.Since(started).Seconds()
		s.logger.WithFields(logrus.Fields{
			"tag":         tag,
			"crew":        report.CrewFound,
			"assignments": report.AssignmentsCached,
			"errors":      len(report.Errors),
		}).Info("cache warmup finished")
		return report
	}

	crew, err := s.repo.AllCrew(ctx)
	if err != nil {
		report.Errors = append(report.Errors, "failed to fetch crew: "+err.Error())
		report.Message = fmt.Sprintf("Cache warmup failed for tag '%s'", tag)
		return finish(), nil
	}
	var ids []int
	for _, c := range crew {
		if c.HasTag(tag) {
			ids = append(ids, c.ID)
		}
	}
	report.CrewFound = len(ids)

	diag := &Diagnostics{}
	assignments := s.bookings.collect(ctx, ids, "projectcrew", s.repo.CrewAssignments, start, end, diag)
	report.AssignmentsCached = len(assignments)

	res := s.resolver.Resolve(ctx, assignments)
	report.FunctionsCached = len(res.Functions)
	report.ProjectsCached = len(res.Projects)
	diag.Merge(res.Failures)

	for _, f := range diag.Failures() {
		report.Errors = append(report.Errors, formatFailure(f))
	}
	report.Message = fmt.Sprintf("Cache warmup complete for tag '%s'", tag)
	return finish(), nil
}

func formatFailure(f Failure) string {
	switch {
	case f.SubjectID > 0:
		return fmt.Sprintf("%s for %d: %s", f.Collection, f.SubjectID, f.Error)
	case f.ID > 0:
		return fmt.Sprintf("%s %d: %s", f.Collection, f.ID, f.Error)
	}
	return fmt.Sprintf("%s: %s", f.Collection, f.Error)
}
