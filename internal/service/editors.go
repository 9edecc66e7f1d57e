package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
)

type deadlineRecords interface {
	FindByID(ctx context.Context, id int64) (*models.Deadline, error)
	UpdateColumns(ctx context.Context, id int64, values []models.ColumnValue) error
}

type certificationRecords interface {
	FindByID(ctx context.Context, id int64) (*models.Certification, error)
	UpdateColumns(ctx context.Context, id int64, values []models.ColumnValue) error
}

type teacherRecords interface {
	FindByID(ctx context.Context, id int64) (*models.TeacherAssignment, error)
	UpdateColumns(ctx context.Context, id int64, values []models.ColumnValue) error
}

type sessionPeriodRecords interface {
	Get(ctx context.Context) (*models.SessionPeriod, error)
	Replace(ctx context.Context, period *models.SessionPeriod) error
}

type scheduleRecords interface {
	FindByID(ctx context.Context, id int64) (*models.ScheduleSlot, error)
	Replace(ctx context.Context, slot *models.ScheduleSlot) error
}

// ColumnEditor edits catalogs whose fields are updated independently of each other.
type ColumnEditor struct {
	catalog models.Catalog
	title   string
	fields  []Field
	load    func(ctx context.Context, id int64) (map[string]string, error)
	update  func(ctx context.Context, id int64, values []models.ColumnValue) error
	metrics *MetricsService
}

// NewDeadlineEditor edits assignment deadlines.
func NewDeadlineEditor(repo deadlineRecords, metrics *MetricsService) *ColumnEditor {
	return &ColumnEditor{
		catalog: models.CatalogDeadlines,
		title:   "Deadlines",
		fields: []Field{
			{ID: "subject_name", Label: "📘 Task", Prompt: "Enter the new task name:", Column: "subject_name"},
			{ID: "deadline_date", Label: "📅 Due date", Prompt: "Enter the new due date (YYYY-MM-DD):", Column: "deadline_date"},
			{ID: "description", Label: "📝 Description", Prompt: "Enter the new description:", Column: "description"},
		},
		load: func(ctx context.Context, id int64) (map[string]string, error) {
			d, err := repo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"subject_name":  d.SubjectName,
				"deadline_date": d.DeadlineDate,
				"description":   d.Description,
			}, nil
		},
		update:  repo.UpdateColumns,
		metrics: metrics,
	}
}

// NewCertificationEditor edits the exam and credit schedule.
func NewCertificationEditor(repo certificationRecords, metrics *MetricsService) *ColumnEditor {
	return &ColumnEditor{
		catalog: models.CatalogCertifications,
		title:   "Certifications",
		fields: []Field{
			{ID: "certification_type", Label: "Certification type", Prompt: "Enter the new certification type:", Column: "certification"},
			{ID: "exam_date", Label: "Exam date", Prompt: "Enter the new exam date (YYYY-MM-DD):", Column: "exam_date"},
			{ID: "subject_name", Label: "Subject", Prompt: "Enter the new subject name:", Column: "subject_name"},
			{ID: "teacher_name", Label: "Teacher", Prompt: "Enter the teacher's full name:", Column: "teacher_name"},
		},
		load: func(ctx context.Context, id int64) (map[string]string, error) {
			c, err := repo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"certification_type": c.CertificationType,
				"exam_date":          c.ExamDate,
				"subject_name":       c.SubjectName,
				"teacher_name":       c.TeacherName,
			}, nil
		},
		update:  repo.UpdateColumns,
		metrics: metrics,
	}
}

// NewTeacherEditor edits subject to teacher assignments.
func NewTeacherEditor(repo teacherRecords, metrics *MetricsService) *ColumnEditor {
	return &ColumnEditor{
		catalog: models.CatalogTeachers,
		title:   "Teachers",
		fields: []Field{
			{ID: "teacher_name", Label: "Teacher", Prompt: "Enter the teacher's full name:", Column: "teacher_name"},
			{ID: "subject_name", Label: "Subject", Prompt: "Enter the new subject name:", Column: "subject_name"},
		},
		load: func(ctx context.Context, id int64) (map[string]string, error) {
			a, err := repo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"teacher_name": a.TeacherName,
				"subject_name": a.SubjectName,
			}, nil
		},
		update:  repo.UpdateColumns,
		metrics: metrics,
	}
}

// Catalog implements FieldEditor.
func (e *ColumnEditor) Catalog() models.Catalog { return e.catalog }

// Title implements FieldEditor.
func (e *ColumnEditor) Title() string { return e.title }

// Fields implements FieldEditor.
func (e *ColumnEditor) Fields() []Field { return append([]Field(nil), e.fields...) }

// SelectsField implements FieldEditor.
func (e *ColumnEditor) SelectsField() bool { return true }

// FullRow implements FieldEditor.
func (e *ColumnEditor) FullRow() bool { return false }

// Flow returns the single chosen field, or every field when none was chosen.
func (e *ColumnEditor) Flow(fieldID string) ([]string, error) {
	if fieldID == "" {
		return fieldIDs(e.fields), nil
	}
	if _, ok := findField(e.fields, fieldID); !ok {
		return nil, unknownField(fieldID)
	}
	return []string{fieldID}, nil
}

// Seed loads the record's current values for display in prompts.
func (e *ColumnEditor) Seed(ctx context.Context, recordID *int64) (map[string]string, error) {
	if recordID == nil {
		return nil, appErrors.Clone(appErrors.ErrState, "no record selected, please start again")
	}
	start := time.Now()
	values, err := e.load(ctx, *recordID)
	e.metrics.ObserveDBQuery(string(e.catalog)+"_find", time.Since(start))
	if err != nil {
		return nil, loadError(err)
	}
	return values, nil
}

// Check implements FieldEditor.
func (e *ColumnEditor) Check(fieldID, value string) error {
	return checkValue(e.fields, fieldID, value)
}

// Commit issues one UPDATE setting only the provided columns.
func (e *ColumnEditor) Commit(ctx context.Context, recordID *int64, values map[string]string) error {
	if recordID == nil {
		return appErrors.Clone(appErrors.ErrState, "no record selected, please start again")
	}
	if len(values) == 0 {
		return appErrors.Clone(appErrors.ErrState, "nothing to save, please start again")
	}
	for id := range values {
		if _, ok := findField(e.fields, id); !ok {
			return unknownField(id)
		}
	}

	columns := make([]models.ColumnValue, 0, len(values))
	for _, f := range e.fields {
		if v, ok := values[f.ID]; ok {
			columns = append(columns, models.ColumnValue{Column: f.Column, Value: v})
		}
	}

	start := time.Now()
	err := e.update(ctx, *recordID, columns)
	e.metrics.ObserveDBQuery(string(e.catalog)+"_update", time.Since(start))
	if err != nil {
		return storageError(err)
	}
	return nil
}

// SessionPeriodEditor edits the singleton session period. Every commit rewrites all three fields.
type SessionPeriodEditor struct {
	repo    sessionPeriodRecords
	fields  []Field
	metrics *MetricsService
}

// NewSessionPeriodEditor constructs a SessionPeriodEditor.
func NewSessionPeriodEditor(repo sessionPeriodRecords, metrics *MetricsService) *SessionPeriodEditor {
	return &SessionPeriodEditor{
		repo: repo,
		fields: []Field{
			{ID: "name", Label: "Session name", Prompt: "Enter the session name:", Column: "name"},
			{ID: "start_date", Label: "Start date", Prompt: "Enter the session start date (YYYY-MM-DD):", Column: "start_date"},
			{ID: "end_date", Label: "End date", Prompt: "Enter the session end date (YYYY-MM-DD):", Column: "end_date"},
		},
		metrics: metrics,
	}
}

func (e *SessionPeriodEditor) Catalog() models.Catalog { return models.CatalogSessionPeriod }
func (e *SessionPeriodEditor) Title() string           { return "Session period" }
func (e *SessionPeriodEditor) Fields() []Field         { return append([]Field(nil), e.fields...) }
func (e *SessionPeriodEditor) SelectsField() bool      { return false }
func (e *SessionPeriodEditor) FullRow() bool           { return true }

// Flow always walks all three fields; a session period has no partial edit.
func (e *SessionPeriodEditor) Flow(fieldID string) ([]string, error) {
	if fieldID != "" {
		if _, ok := findField(e.fields, fieldID); !ok {
			return nil, unknownField(fieldID)
		}
	}
	return fieldIDs(e.fields), nil
}

// Seed returns the stored session period.
func (e *SessionPeriodEditor) Seed(ctx context.Context, _ *int64) (map[string]string, error) {
	start := time.Now()
	period, err := e.repo.Get(ctx)
	e.metrics.ObserveDBQuery("session_period_get", time.Since(start))
	if err != nil {
		return nil, loadError(err)
	}
	return map[string]string{
		"name":       period.Name,
		"start_date": period.StartDate,
		"end_date":   period.EndDate,
	}, nil
}

func (e *SessionPeriodEditor) Check(fieldID, value string) error {
	return checkValue(e.fields, fieldID, value)
}

// Commit replaces the session period. All three values are required.
func (e *SessionPeriodEditor) Commit(ctx context.Context, _ *int64, values map[string]string) error {
	for id := range values {
		if _, ok := findField(e.fields, id); !ok {
			return unknownField(id)
		}
	}
	for _, f := range e.fields {
		if strings.TrimSpace(values[f.ID]) == "" {
			return appErrors.Clone(appErrors.ErrState, "session period needs a name, start and end date, please start again")
		}
	}

	period := &models.SessionPeriod{
		Name:      values["name"],
		StartDate: values["start_date"],
		EndDate:   values["end_date"],
	}
	start := time.Now()
	err := e.repo.Replace(ctx, period)
	e.metrics.ObserveDBQuery("session_period_replace", time.Since(start))
	if err != nil {
		return storageError(err)
	}
	return nil
}

// ScheduleEditor edits weekly schedule slots. Commits always resend the full row, so the
// dialogue seeds every column from the stored slot.
type ScheduleEditor struct {
	repo     scheduleRecords
	fields   []Field
	validate *validator.Validate
	metrics  *MetricsService
}

// NewScheduleEditor constructs a ScheduleEditor.
func NewScheduleEditor(repo scheduleRecords, metrics *MetricsService) *ScheduleEditor {
	numbers := make([]string, 0, models.MaxSubjectNumber)
	for n := models.MinSubjectNumber; n <= models.MaxSubjectNumber; n++ {
		numbers = append(numbers, strconv.Itoa(n))
	}
	return &ScheduleEditor{
		repo: repo,
		fields: []Field{
			{ID: "day_of_week", Label: "Day", Prompt: "Choose the day of the week:", Column: "day_of_week", Options: append([]string(nil), models.Weekdays...)},
			{ID: "num_subject", Label: "Lesson number", Prompt: "Choose the lesson number:", Column: "num_subject", Options: numbers},
			{ID: "subject_name", Label: "Subject", Prompt: "Enter the new subject name:", Column: "subject_name"},
			{ID: "room_number", Label: "Room", Prompt: "Enter the room number:", Column: "room_number"},
		},
		validate: validator.New(),
		metrics:  metrics,
	}
}

func (e *ScheduleEditor) Catalog() models.Catalog { return models.CatalogSchedule }
func (e *ScheduleEditor) Title() string           { return "Schedule" }
func (e *ScheduleEditor) Fields() []Field         { return append([]Field(nil), e.fields...) }
func (e *ScheduleEditor) SelectsField() bool      { return false }
func (e *ScheduleEditor) FullRow() bool           { return true }

// Flow defaults to renaming the subject of the slot.
func (e *ScheduleEditor) Flow(fieldID string) ([]string, error) {
	if fieldID == "" {
		return []string{"subject_name"}, nil
	}
	if _, ok := findField(e.fields, fieldID); !ok {
		return nil, unknownField(fieldID)
	}
	return []string{fieldID}, nil
}

// Seed loads the whole slot so the full-row write carries unchanged columns.
func (e *ScheduleEditor) Seed(ctx context.Context, recordID *int64) (map[string]string, error) {
	if recordID == nil {
		return nil, appErrors.Clone(appErrors.ErrState, "no lesson selected, please start again")
	}
	start := time.Now()
	slot, err := e.repo.FindByID(ctx, *recordID)
	e.metrics.ObserveDBQuery("schedule_find", time.Since(start))
	if err != nil {
		return nil, loadError(err)
	}
	return map[string]string{
		"day_of_week":  slot.DayOfWeek,
		"num_subject":  strconv.Itoa(slot.NumSubject),
		"subject_name": slot.SubjectName,
		"room_number":  slot.RoomNumber,
	}, nil
}

func (e *ScheduleEditor) Check(fieldID, value string) error {
	return checkValue(e.fields, fieldID, value)
}

// Commit replaces all four columns of the slot.
func (e *ScheduleEditor) Commit(ctx context.Context, recordID *int64, values map[string]string) error {
	if recordID == nil {
		return appErrors.Clone(appErrors.ErrState, "no lesson selected, please start again")
	}
	for id := range values {
		if _, ok := findField(e.fields, id); !ok {
			return unknownField(id)
		}
	}
	for _, f := range e.fields {
		if _, ok := values[f.ID]; !ok {
			return appErrors.Clone(appErrors.ErrState, fmt.Sprintf("lesson is missing %s, please start again", f.Label))
		}
	}

	num, err := strconv.Atoi(strings.TrimSpace(values["num_subject"]))
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "lesson number must be a whole number")
	}
	slot := &models.ScheduleSlot{
		ID:          *recordID,
		DayOfWeek:   values["day_of_week"],
		NumSubject:  num,
		SubjectName: values["subject_name"],
		RoomNumber:  values["room_number"],
	}
	if err := e.validate.Struct(slot); err != nil {
		return appErrors.CloneWrap(appErrors.ErrValidation, err, fmt.Sprintf("lesson needs a day of at most 20 characters and a number from %d to %d", models.MinSubjectNumber, models.MaxSubjectNumber))
	}

	start := time.Now()
	err = e.repo.Replace(ctx, slot)
	e.metrics.ObserveDBQuery("schedule_replace", time.Since(start))
	if err != nil {
		return storageError(err)
	}
	return nil
}

func checkValue(fields []Field, fieldID, value string) error {
	field, ok := findField(fields, fieldID)
	if !ok {
		return unknownField(fieldID)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return appErrors.Clone(appErrors.ErrValidation, "value must not be empty")
	}
	if len(field.Options) == 0 {
		return nil
	}
	for _, opt := range field.Options {
		if opt == value {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be one of: %s", field.Label, strings.Join(field.Options, ", ")))
}

func unknownField(id string) error {
	return appErrors.Clone(appErrors.ErrUnknownField, fmt.Sprintf("unknown field %q", id))
}

func loadError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.CloneWrap(appErrors.ErrNotFound, err, "")
	}
	return appErrors.CloneWrap(appErrors.ErrStorage, err, "failed to load record")
}

func storageError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.CloneWrap(appErrors.ErrStorage, err, "record no longer exists, nothing was saved")
	}
	return appErrors.CloneWrap(appErrors.ErrStorage, err, "")
}
