package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
	"github.com/noah-isme/schedule-editor-bot/internal/repository"
	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
)

const (
	adminID    int64 = 1001
	headmanID  int64 = 1002
	strangerID int64 = 2002
)

type sentPrompt struct {
	operatorID int64
	text       string
	choices    []models.Choice
}

type recordingPresenter struct {
	mu      sync.Mutex
	prompts []sentPrompt
}

func (p *recordingPresenter) Prompt(ctx context.Context, operatorID int64, text string, choices []models.Choice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, sentPrompt{operatorID: operatorID, text: text, choices: choices})
	return nil
}

func (p *recordingPresenter) last(t *testing.T) sentPrompt {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.prompts)
	return p.prompts[len(p.prompts)-1]
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

type catalogBrowserStub struct {
	records     map[models.Catalog][]models.RecordSummary
	days        []string
	invalidated []models.Catalog
}

func (s *catalogBrowserStub) List(ctx context.Context, catalog models.Catalog, scope string) ([]models.RecordSummary, error) {
	return s.records[catalog], nil
}

func (s *catalogBrowserStub) ScheduleDays(ctx context.Context) ([]string, error) {
	return s.days, nil
}

func (s *catalogBrowserStub) Invalidate(ctx context.Context, catalog models.Catalog) {
	s.invalidated = append(s.invalidated, catalog)
}

type driverFixture struct {
	svc       *DialogueService
	store     *repository.MemorySessionRepository
	presenter *recordingPresenter
	browser   *catalogBrowserStub
	mock      sqlmock.Sqlmock
}

func newDriverFixture(t *testing.T, opts ...DialogueServiceOption) *driverFixture {
	t.Helper()
	db, mock := newDBMock(t)
	editors := NewEditorRegistry(
		NewSessionPeriodEditor(repository.NewSessionPeriodRepository(db), nil),
		NewDeadlineEditor(repository.NewDeadlineRepository(db), nil),
		NewCertificationEditor(repository.NewCertificationRepository(db), nil),
		NewTeacherEditor(repository.NewTeacherRepository(db), nil),
		NewScheduleEditor(repository.NewScheduleRepository(db), nil),
	)
	store := repository.NewMemorySessionRepository(0)
	presenter := &recordingPresenter{}
	browser := &catalogBrowserStub{records: map[models.Catalog][]models.RecordSummary{}}
	svc := NewDialogueService(store, editors, browser, presenter, NewAuthGate([]int64{adminID, headmanID}), NewMetricsService(), zap.NewNop(), opts...)
	return &driverFixture{svc: svc, store: store, presenter: presenter, browser: browser, mock: mock}
}

func expectDeadlineSeed(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM deadlines WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_name", "deadline_date", "description"}).
			AddRow(id, "Math", "2024-05-10", "Homework 3"))
}

func expectTeacherSeed(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM teacher WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_name", "teacher_name"}).
			AddRow(id, "History", "Petrova"))
}

func TestDialogueDeadlineDateEdit(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	expectDeadlineSeed(f.mock, 7)
	f.mock.ExpectExec(regexp.QuoteMeta("UPDATE deadlines SET deadline_date = $1 WHERE id = $2")).
		WithArgs("2024-06-01", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	session, err := f.svc.Start(ctx, adminID, models.CatalogDeadlines, int64Ptr(7), "deadline_date")
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingField, session.State())
	assert.Equal(t, "deadline_date", session.CurrentField())
	assert.Equal(t, "2024-05-10", session.Current["deadline_date"])

	_, committed, err := f.svc.Submit(ctx, adminID, "2024-06-01")
	require.NoError(t, err)
	assert.True(t, committed)

	active, err := f.svc.Active(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Equal(t, []models.Catalog{models.CatalogDeadlines}, f.browser.invalidated)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueCompleteFlowWritesOnce(t *testing.T) {
	cases := []struct {
		name    string
		catalog models.Catalog
		record  *int64
		field   string
		answers []string
		expect  func(mock sqlmock.Sqlmock)
	}{
		{
			name:    "session period",
			catalog: models.CatalogSessionPeriod,
			answers: []string{"Summer", "2024-06-01", "2024-06-30"},
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT name, start_date, end_date FROM session_periods LIMIT 1")).
					WillReturnRows(sqlmock.NewRows([]string{"name", "start_date", "end_date"}).AddRow("Winter", "2024-01-10", "2024-01-30"))
				mock.ExpectExec(regexp.QuoteMeta("UPDATE session_periods SET name = $1, start_date = $2, end_date = $3")).
					WithArgs("Summer", "2024-06-01", "2024-06-30").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "deadline description",
			catalog: models.CatalogDeadlines,
			record:  int64Ptr(4),
			field:   "description",
			answers: []string{"Essay"},
			expect: func(mock sqlmock.Sqlmock) {
				expectDeadlineSeed(mock, 4)
				mock.ExpectExec(regexp.QuoteMeta("UPDATE deadlines SET description = $1 WHERE id = $2")).
					WithArgs("Essay", int64(4)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "certification type",
			catalog: models.CatalogCertifications,
			record:  int64Ptr(5),
			field:   "certification_type",
			answers: []string{"Credit"},
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM exams_schedule WHERE id = $1")).
					WithArgs(int64(5)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "certification", "subject_name", "exam_date", "teacher_name"}).
						AddRow(5, "Exam", "Math", "2024-06-10", "Petrova"))
				mock.ExpectExec(regexp.QuoteMeta("UPDATE exams_schedule SET certification = $1 WHERE id = $2")).
					WithArgs("Credit", int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "teacher name",
			catalog: models.CatalogTeachers,
			record:  int64Ptr(6),
			field:   "teacher_name",
			answers: []string{"Ivanova"},
			expect: func(mock sqlmock.Sqlmock) {
				expectTeacherSeed(mock, 6)
				mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher SET teacher_name = $1 WHERE id = $2")).
					WithArgs("Ivanova", int64(6)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "schedule subject keeps the rest of the row",
			catalog: models.CatalogSchedule,
			record:  int64Ptr(3),
			answers: []string{"Physics"},
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM schedule WHERE id = $1")).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "day_of_week", "num_subject", "subject_name", "room_number"}).
						AddRow(3, "Monday", 2, "Math", "101"))
				mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule SET day_of_week = $1, num_subject = $2, subject_name = $3, room_number = $4 WHERE id = $5")).
					WithArgs("Monday", int64(2), "Physics", "101", int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newDriverFixture(t)
			ctx := context.Background()
			tc.expect(f.mock)

			_, err := f.svc.Start(ctx, headmanID, tc.catalog, tc.record, tc.field)
			require.NoError(t, err)

			for i, answer := range tc.answers {
				_, committed, err := f.svc.Submit(ctx, headmanID, answer)
				require.NoError(t, err)
				assert.Equal(t, i == len(tc.answers)-1, committed)
			}

			count, err := f.store.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestDialogueSubmitWhileIdle(t *testing.T) {
	f := newDriverFixture(t)

	session, committed, err := f.svc.Submit(context.Background(), adminID, "2024-06-01")
	assert.ErrorIs(t, err, appErrors.ErrState)
	assert.Nil(t, session)
	assert.False(t, committed)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueStartConflictKeepsExistingSession(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM session_periods")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "start_date", "end_date"}).AddRow("Winter", "2024-01-10", "2024-01-30"))

	_, err := f.svc.Start(ctx, adminID, models.CatalogSessionPeriod, nil, "")
	require.NoError(t, err)
	_, _, err = f.svc.Submit(ctx, adminID, "Summer")
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, adminID, models.CatalogTeachers, int64Ptr(1), "teacher_name")
	assert.ErrorIs(t, err, appErrors.ErrSessionConflict)

	active, err := f.svc.Active(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, models.CatalogSessionPeriod, active.Catalog)
	assert.Equal(t, map[string]string{"name": "Summer"}, active.Collected)
	assert.Equal(t, "start_date", active.CurrentField())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueCancelDiscardsWithoutWriting(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	expectTeacherSeed(f.mock, 2)
	_, err := f.svc.Start(ctx, adminID, models.CatalogTeachers, int64Ptr(2), "")
	require.NoError(t, err)
	_, _, err = f.svc.Submit(ctx, adminID, "Ivanova")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, adminID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	cancelled, err = f.svc.Cancel(ctx, adminID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	active, err := f.svc.Active(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueUnauthorizedOperatorNeverStarts(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()
	expectTeacherSeed(f.mock, 8)

	var wg sync.WaitGroup
	errs := make(map[int64]error)
	var mu sync.Mutex
	for _, id := range []int64{adminID, strangerID} {
		wg.Add(1)
		go func(operatorID int64) {
			defer wg.Done()
			_, err := f.svc.Start(ctx, operatorID, models.CatalogTeachers, int64Ptr(8), "teacher_name")
			mu.Lock()
			errs[operatorID] = err
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	assert.NoError(t, errs[adminID])
	assert.ErrorIs(t, errs[strangerID], appErrors.ErrAuthorization)

	for _, catalog := range models.Catalogs {
		_, err := f.svc.Start(ctx, strangerID, catalog, int64Ptr(1), "")
		assert.ErrorIs(t, err, appErrors.ErrAuthorization)
	}

	stored, err := f.store.Get(ctx, strangerID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	active, err := f.svc.Active(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, models.StateAwaitingField, active.State())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueEmptyAllowListDeniesEveryone(t *testing.T) {
	db, mock := newDBMock(t)
	store := repository.NewMemorySessionRepository(0)
	svc := NewDialogueService(store, NewEditorRegistry(NewTeacherEditor(repository.NewTeacherRepository(db), nil)), &catalogBrowserStub{}, &recordingPresenter{}, NewAuthGate(nil), nil, nil)

	_, err := svc.Start(context.Background(), adminID, models.CatalogTeachers, int64Ptr(1), "teacher_name")
	assert.ErrorIs(t, err, appErrors.ErrAuthorization)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialogueCommitFailureReturnsToIdle(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	expectDeadlineSeed(f.mock, 7)
	f.mock.ExpectExec(regexp.QuoteMeta("UPDATE deadlines SET deadline_date = $1 WHERE id = $2")).
		WithArgs("2024-06-01", int64(7)).
		WillReturnError(errors.New("connection reset by peer"))

	require.NoError(t, f.svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventChooseField, Catalog: models.CatalogDeadlines, RecordID: int64Ptr(7), FieldID: "deadline_date"}))
	require.NoError(t, f.svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventSubmitValue, Payload: "2024-06-01"}))

	active, err := f.svc.Active(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, active)

	last := f.presenter.last(t)
	assert.Equal(t, adminID, last.operatorID)
	assert.True(t, strings.HasPrefix(last.text, "❌"))
	assert.Empty(t, f.browser.invalidated)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueCommitTimeoutClearsRedisSession(t *testing.T) {
	db, mock := newDBMock(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := repository.NewRedisSessionRepository(client, "test:dialogue:", 0)
	presenter := &recordingPresenter{}
	browser := &catalogBrowserStub{}
	svc := NewDialogueService(store, NewEditorRegistry(NewDeadlineEditor(repository.NewDeadlineRepository(db), nil)), browser, presenter, NewAuthGate([]int64{adminID}), nil, nil)

	expectDeadlineSeed(mock, 7)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE deadlines SET deadline_date = $1 WHERE id = $2")).
		WithArgs("2024-06-01", int64(7)).
		WillDelayFor(200 * time.Millisecond).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Start(context.Background(), adminID, models.CatalogDeadlines, int64Ptr(7), "deadline_date")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventSubmitValue, Payload: "2024-06-01"}))

	assert.True(t, strings.HasPrefix(presenter.last(t).text, "❌"))
	stored, err := store.Get(context.Background(), adminID)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Empty(t, browser.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialogueRejectsOptionFromEarlierQuestion(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM schedule WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_of_week", "num_subject", "subject_name", "room_number"}).
			AddRow(3, "Monday", 2, "Math", "101"))

	require.NoError(t, f.svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventStartEdit, Catalog: models.CatalogSchedule, RecordID: int64Ptr(3)}))
	before := f.presenter.count()

	require.NoError(t, f.svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventSubmitValue, FieldID: "day_of_week", Payload: "Tuesday"}))
	assert.Equal(t, before+2, f.presenter.count())
	assert.Contains(t, f.presenter.prompts[before].text, "earlier question")

	active, err := f.svc.Active(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "subject_name", active.CurrentField())
	assert.Empty(t, active.Collected)

	_, _, err = f.svc.SubmitField(ctx, adminID, "num_subject", "3")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueHandleRepromptsOnInvalidValue(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM schedule WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_of_week", "num_subject", "subject_name", "room_number"}).
			AddRow(3, "Monday", 2, "Math", "101"))

	require.NoError(t, f.svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventStartEdit, Catalog: models.CatalogSchedule, RecordID: int64Ptr(3), FieldID: "num_subject"}))
	prompt := f.presenter.last(t)
	assert.Contains(t, prompt.text, "Current value: 2")
	require.Len(t, prompt.choices, 9)
	assert.Equal(t, models.EventSubmitValue, prompt.choices[0].Event.Kind)
	assert.Equal(t, "num_subject", prompt.choices[0].Event.FieldID)
	assert.Equal(t, models.EventCancel, prompt.choices[8].Event.Kind)

	before := f.presenter.count()
	require.NoError(t, f.svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventSubmitValue, Payload: "9"}))
	assert.Equal(t, before+2, f.presenter.count())

	active, err := f.svc.Active(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "num_subject", active.CurrentField())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueHandleDeniesPanelToStrangers(t *testing.T) {
	f := newDriverFixture(t)

	require.NoError(t, f.svc.Handle(context.Background(), models.Event{OperatorID: strangerID, Kind: models.EventOpenPanel}))
	last := f.presenter.last(t)
	assert.Equal(t, msgDenied, last.text)
	assert.Empty(t, last.choices)
}

func TestDialogueHandleOpenPanel(t *testing.T) {
	f := newDriverFixture(t)

	require.NoError(t, f.svc.Handle(context.Background(), models.Event{OperatorID: adminID, Kind: models.EventOpenPanel}))
	last := f.presenter.last(t)
	assert.Equal(t, msgPanel, last.text)
	require.Len(t, last.choices, len(models.Catalogs))
	assert.Equal(t, models.EventStartEdit, last.choices[0].Event.Kind)
	assert.Equal(t, models.CatalogSessionPeriod, last.choices[0].Event.Catalog)
	assert.Equal(t, models.EventListRecords, last.choices[4].Event.Kind)
}

func TestDialogueHandleListsRecordsAndFields(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()
	f.browser.records[models.CatalogDeadlines] = []models.RecordSummary{{ID: 7, Label: "Math - 2024-05-10"}}

	require.NoError(t, f.svc.Handle(ctx, models.Event{OperatorID: adminID, Kind: models.EventListRecords, Catalog: models.CatalogDeadlines}))
	list := f.presenter.last(t)
	require.Len(t, list.choices, 2)
	require.NotNil(t, list.choices[0].Event.RecordID)
	assert.Equal(t, int64(7), *list.choices[0].Event.RecordID)
	assert.Equal(t, models.EventOpenPanel, list.choices[1].Event.Kind)

	pick := list.choices[0].Event
	pick.OperatorID = adminID
	require.NoError(t, f.svc.Handle(ctx, pick))
	menu := f.presenter.last(t)
	assert.Equal(t, msgChooseField, menu.text)
	require.Len(t, menu.choices, 4)
	assert.Equal(t, models.EventChooseField, menu.choices[1].Event.Kind)
	assert.Equal(t, "deadline_date", menu.choices[1].Event.FieldID)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDialogueHandleScheduleDays(t *testing.T) {
	f := newDriverFixture(t)
	f.browser.days = []string{models.Monday, models.Wednesday}

	require.NoError(t, f.svc.Handle(context.Background(), models.Event{OperatorID: adminID, Kind: models.EventListRecords, Catalog: models.CatalogSchedule}))
	last := f.presenter.last(t)
	assert.Equal(t, msgChooseDay, last.text)
	require.Len(t, last.choices, 3)
	assert.Equal(t, models.Wednesday, last.choices[1].Event.Payload)
}

func TestDialogueHandleEmptyCatalog(t *testing.T) {
	f := newDriverFixture(t)

	require.NoError(t, f.svc.Handle(context.Background(), models.Event{OperatorID: adminID, Kind: models.EventListRecords, Catalog: models.CatalogTeachers}))
	last := f.presenter.last(t)
	assert.Equal(t, msgNoRecords, last.text)
	require.Len(t, last.choices, 1)
}

func TestDialogueHandleDropsMalformedEvent(t *testing.T) {
	f := newDriverFixture(t)

	require.NoError(t, f.svc.Handle(context.Background(), models.Event{Kind: models.EventOpenPanel}))
	require.NoError(t, f.svc.Handle(context.Background(), models.Event{OperatorID: adminID, Kind: "explode"}))
	assert.Zero(t, f.presenter.count())
}

func TestDialogueIdleTimeoutExpiresSession(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := newDriverFixture(t, WithIdleTimeout(5*time.Minute), WithClock(clock))
	ctx := context.Background()

	expectTeacherSeed(f.mock, 2)
	_, err := f.svc.Start(ctx, adminID, models.CatalogTeachers, int64Ptr(2), "subject_name")
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	_, _, err = f.svc.Submit(ctx, adminID, "Biology")
	assert.ErrorIs(t, err, appErrors.ErrState)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDialogueJanitorSweepsMemoryStore(t *testing.T) {
	db, mock := newDBMock(t)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := repository.NewMemorySessionRepository(time.Minute)
	svc := NewDialogueService(store, NewEditorRegistry(NewTeacherEditor(repository.NewTeacherRepository(db), nil)), &catalogBrowserStub{}, &recordingPresenter{}, NewAuthGate([]int64{adminID}), nil, nil,
		WithIdleTimeout(time.Minute), WithClock(func() time.Time { return now }))

	expectTeacherSeed(mock, 2)
	_, err := svc.Start(context.Background(), adminID, models.CatalogTeachers, int64Ptr(2), "subject_name")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, svc.Sweep(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
