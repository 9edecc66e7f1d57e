package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
)

type deadlineLister interface {
	List(ctx context.Context) ([]models.Deadline, error)
}

type certificationLister interface {
	List(ctx context.Context) ([]models.Certification, error)
}

type teacherLister interface {
	List(ctx context.Context) ([]models.TeacherAssignment, error)
}

type scheduleLister interface {
	ListDays(ctx context.Context) ([]string, error)
	ListByDay(ctx context.Context, day string) ([]models.ScheduleSlot, error)
}

// CatalogService renders catalog rows as selectable summaries, cached when enabled.
type CatalogService struct {
	deadlines      deadlineLister
	certifications certificationLister
	teachers       teacherLister
	schedule       scheduleLister
	cache          *CacheService
	metrics        *MetricsService
	logger         *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(deadlines deadlineLister, certifications certificationLister, teachers teacherLister, schedule scheduleLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		deadlines:      deadlines,
		certifications: certifications,
		teachers:       teachers,
		schedule:       schedule,
		cache:          cache,
		metrics:        metrics,
		logger:         logger,
	}
}

// List returns the records of catalog. For the schedule, scope is the day to list.
func (s *CatalogService) List(ctx context.Context, catalog models.Catalog, scope string) ([]models.RecordSummary, error) {
	if cached, ok := s.cache.Get(ctx, catalog, scope); ok {
		return cached, nil
	}

	start := time.Now()
	summaries, err := s.load(ctx, catalog, scope)
	s.metrics.ObserveDBQuery(string(catalog)+"_list", time.Since(start))
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, catalog, scope, summaries)
	return summaries, nil
}

func (s *CatalogService) load(ctx context.Context, catalog models.Catalog, scope string) ([]models.RecordSummary, error) {
	var summaries []models.RecordSummary
	switch catalog {
	case models.CatalogDeadlines:
		rows, err := s.deadlines.List(ctx)
		if err != nil {
			return nil, listError(err)
		}
		for _, d := range rows {
			summaries = append(summaries, models.RecordSummary{ID: d.ID, Label: fmt.Sprintf("%s - %s", d.SubjectName, d.DeadlineDate)})
		}
	case models.CatalogCertifications:
		rows, err := s.certifications.List(ctx)
		if err != nil {
			return nil, listError(err)
		}
		for _, c := range rows {
			summaries = append(summaries, models.RecordSummary{ID: c.ID, Label: fmt.Sprintf("%s - %s", c.CertificationType, c.SubjectName)})
		}
	case models.CatalogTeachers:
		rows, err := s.teachers.List(ctx)
		if err != nil {
			return nil, listError(err)
		}
		for _, a := range rows {
			summaries = append(summaries, models.RecordSummary{ID: a.ID, Label: fmt.Sprintf("%s - %s", a.SubjectName, a.TeacherName)})
		}
	case models.CatalogSchedule:
		if scope == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "choose a day first")
		}
		rows, err := s.schedule.ListByDay(ctx, scope)
		if err != nil {
			return nil, listError(err)
		}
		for _, slot := range rows {
			summaries = append(summaries, models.RecordSummary{ID: slot.ID, Label: fmt.Sprintf("%d. %s (%s)", slot.NumSubject, slot.SubjectName, slot.RoomNumber)})
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("catalog %q has no record list", catalog))
	}
	return summaries, nil
}

// ScheduleDays lists the days that have lessons, in calendar order.
func (s *CatalogService) ScheduleDays(ctx context.Context) ([]string, error) {
	start := time.Now()
	days, err := s.schedule.ListDays(ctx)
	s.metrics.ObserveDBQuery("schedule_days", time.Since(start))
	if err != nil {
		return nil, listError(err)
	}
	sort.SliceStable(days, func(i, j int) bool {
		return weekdayIndex(days[i]) < weekdayIndex(days[j])
	})
	return days, nil
}

// Invalidate drops cached listings after a catalog changed.
func (s *CatalogService) Invalidate(ctx context.Context, catalog models.Catalog) {
	s.cache.Invalidate(ctx, catalog)
}

func weekdayIndex(day string) int {
	for i, d := range models.Weekdays {
		if d == day {
			return i
		}
	}
	return len(models.Weekdays)
}

func listError(err error) error {
	return appErrors.CloneWrap(appErrors.ErrStorage, err, "failed to load records")
}
