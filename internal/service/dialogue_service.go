package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
)

// SessionStore persists in-progress dialogues keyed by operator. A missing entry means Idle.
type SessionStore interface {
	Get(ctx context.Context, operatorID int64) (*models.DialogueSession, error)
	Save(ctx context.Context, session *models.DialogueSession) error
	Delete(ctx context.Context, operatorID int64) error
	Count(ctx context.Context) (int, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Presenter delivers a message with optional buttons to an operator.
type Presenter interface {
	Prompt(ctx context.Context, operatorID int64, text string, choices []models.Choice) error
}

// Authorizer decides who may edit.
type Authorizer interface {
	IsAuthorized(userID int64) bool
}

type catalogBrowser interface {
	List(ctx context.Context, catalog models.Catalog, scope string) ([]models.RecordSummary, error)
	ScheduleDays(ctx context.Context) ([]string, error)
	Invalidate(ctx context.Context, catalog models.Catalog)
}

const (
	lockStripes = 64

	// cleanupTimeout bounds session removal, which must outlive the event's own deadline.
	cleanupTimeout = 5 * time.Second
)

// DialogueService drives edit dialogues: it authorizes operators, walks them through the
// fields of a record and commits the collected values once.
type DialogueService struct {
	store     SessionStore
	editors   *EditorRegistry
	catalogs  catalogBrowser
	presenter Presenter
	auth      Authorizer
	metrics   *MetricsService
	logger    *zap.Logger
	validate  *validator.Validate
	idleTTL   time.Duration
	now       func() time.Time

	locks [lockStripes]sync.Mutex
}

// DialogueServiceOption configures the service.
type DialogueServiceOption func(*DialogueService)

// WithIdleTimeout expires sessions left unanswered for longer than ttl. Zero disables expiry.
func WithIdleTimeout(ttl time.Duration) DialogueServiceOption {
	return func(s *DialogueService) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) DialogueServiceOption {
	return func(s *DialogueService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithValidator overrides the event validator.
func WithValidator(v *validator.Validate) DialogueServiceOption {
	return func(s *DialogueService) {
		if v != nil {
			s.validate = v
		}
	}
}

// NewDialogueService constructs the dialogue driver.
func NewDialogueService(store SessionStore, editors *EditorRegistry, catalogs catalogBrowser, presenter Presenter, auth Authorizer, metrics *MetricsService, logger *zap.Logger, opts ...DialogueServiceOption) *DialogueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if auth == nil {
		auth = NewAuthGate(nil)
	}
	s := &DialogueService{
		store:     store,
		editors:   editors,
		catalogs:  catalogs,
		presenter: presenter,
		auth:      auth,
		metrics:   metrics,
		logger:    logger,
		validate:  validator.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DialogueService) lock(operatorID int64) func() {
	m := &s.locks[uint64(operatorID)%lockStripes]
	m.Lock()
	return m.Unlock
}

// Active returns the operator's live session, or nil when Idle.
func (s *DialogueService) Active(ctx context.Context, operatorID int64) (*models.DialogueSession, error) {
	unlock := s.lock(operatorID)
	defer unlock()
	return s.active(ctx, operatorID)
}

func (s *DialogueService) active(ctx context.Context, operatorID int64) (*models.DialogueSession, error) {
	session, err := s.store.Get(ctx, operatorID)
	if err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrStorage, err, "failed to load edit session")
	}
	if session == nil {
		return nil, nil
	}
	if session.Expired(s.now(), s.idleTTL) {
		s.logger.Info("dialogue expired", zap.Int64("operator_id", operatorID), zap.String("session_id", session.ID), zap.String("catalog", string(session.Catalog)))
		s.drop(ctx, operatorID)
		s.metrics.RecordDialogueOutcome(session.Catalog, OutcomeExpired)
		return nil, nil
	}
	return session, nil
}

// cleanupContext keeps ctx values but not its cancellation, so a commit that ran out of time
// still returns the operator to Idle.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

func (s *DialogueService) drop(ctx context.Context, operatorID int64) {
	ctx, cancel := cleanupContext(ctx)
	defer cancel()
	if err := s.store.Delete(ctx, operatorID); err != nil {
		s.logger.Error("failed to delete dialogue session", zap.Int64("operator_id", operatorID), zap.Error(err))
	}
	s.refreshActive(ctx)
}

func (s *DialogueService) refreshActive(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count dialogue sessions", zap.Error(err))
		return
	}
	s.metrics.SetActiveSessions(n)
}

func (s *DialogueService) editor(catalog models.Catalog) (FieldEditor, error) {
	editor, ok := s.editors.Get(catalog)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown catalog %q", catalog))
	}
	return editor, nil
}

// Start opens a dialogue for one record. An operator already in a dialogue gets
// ErrSessionConflict and the existing dialogue is left as it was.
func (s *DialogueService) Start(ctx context.Context, operatorID int64, catalog models.Catalog, recordID *int64, fieldID string) (*models.DialogueSession, error) {
	if !s.auth.IsAuthorized(operatorID) {
		return nil, appErrors.ErrAuthorization
	}
	editor, err := s.editor(catalog)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(operatorID)
	defer unlock()

	existing, err := s.active(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.ErrSessionConflict
	}

	flow, err := editor.Flow(fieldID)
	if err != nil {
		return nil, err
	}
	current, err := editor.Seed(ctx, recordID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.DialogueSession{
		ID:         uuid.NewString(),
		OperatorID: operatorID,
		Catalog:    catalog,
		Flow:       flow,
		Collected:  make(map[string]string, len(flow)),
		Current:    current,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	if recordID != nil {
		id := *recordID
		session.RecordID = &id
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrStorage, err, "failed to start edit")
	}
	s.refreshActive(ctx)

	s.logger.Info("dialogue started",
		zap.Int64("operator_id", operatorID),
		zap.String("session_id", session.ID),
		zap.String("catalog", string(catalog)),
		zap.Strings("flow", flow),
	)
	return session.Clone(), nil
}

// Submit answers the field the operator is being asked for. After the last field the editor
// commits once and the session ends whether or not the write succeeded.
func (s *DialogueService) Submit(ctx context.Context, operatorID int64, value string) (*models.DialogueSession, bool, error) {
	return s.SubmitField(ctx, operatorID, "", value)
}

// SubmitField is Submit for an answer bound to fieldID, such as an option button. An answer
// meant for another field is rejected and the session is left as it was. An empty fieldID
// answers whatever field is current.
func (s *DialogueService) SubmitField(ctx context.Context, operatorID int64, fieldID, value string) (*models.DialogueSession, bool, error) {
	unlock := s.lock(operatorID)
	defer unlock()

	session, err := s.active(ctx, operatorID)
	if err != nil {
		return nil, false, err
	}
	if session == nil {
		return nil, false, appErrors.ErrState
	}
	editor, err := s.editor(session.Catalog)
	if err != nil {
		s.drop(ctx, operatorID)
		return nil, false, err
	}

	if fieldID != "" && fieldID != session.CurrentField() {
		return session, false, appErrors.Clone(appErrors.ErrValidation, msgStaleChoice)
	}

	value = strings.TrimSpace(value)
	if err := editor.Check(session.CurrentField(), value); err != nil {
		return session, false, err
	}

	if done := session.Record(value, s.now()); !done {
		if err := s.store.Save(ctx, session); err != nil {
			return nil, false, appErrors.CloneWrap(appErrors.ErrStorage, err, "failed to save answer")
		}
		return session, false, nil
	}

	values := session.Collected
	if editor.FullRow() {
		values = session.Merged()
	}
	commitErr := editor.Commit(ctx, session.RecordID, values)
	s.drop(ctx, operatorID)

	logFields := []zap.Field{
		zap.Int64("operator_id", operatorID),
		zap.String("session_id", session.ID),
		zap.String("catalog", string(session.Catalog)),
	}
	if commitErr != nil {
		s.metrics.RecordDialogueOutcome(session.Catalog, OutcomeFailed)
		s.logger.Error("dialogue commit failed", append(logFields, zap.Error(commitErr))...)
		return session, false, commitErr
	}

	invalidateCtx, cancel := cleanupContext(ctx)
	s.catalogs.Invalidate(invalidateCtx, session.Catalog)
	cancel()
	s.metrics.RecordDialogueOutcome(session.Catalog, OutcomeCommitted)
	s.logger.Info("dialogue committed", logFields...)
	return session, true, nil
}

// Cancel discards the operator's dialogue without writing. It reports whether a dialogue was
// in progress.
func (s *DialogueService) Cancel(ctx context.Context, operatorID int64) (bool, error) {
	unlock := s.lock(operatorID)
	defer unlock()

	session, err := s.active(ctx, operatorID)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}
	if err := s.store.Delete(ctx, operatorID); err != nil {
		return false, appErrors.CloneWrap(appErrors.ErrStorage, err, "failed to cancel edit")
	}
	s.refreshActive(ctx)
	s.metrics.RecordDialogueOutcome(session.Catalog, OutcomeCancelled)
	s.logger.Info("dialogue cancelled", zap.Int64("operator_id", operatorID), zap.String("session_id", session.ID))
	return true, nil
}

// Handle routes one decoded operator event and renders the outcome. Dialogue errors become
// operator messages; only delivery failures are returned.
func (s *DialogueService) Handle(ctx context.Context, event models.Event) error {
	if err := s.validate.Struct(event); err != nil {
		s.logger.Warn("dropping malformed event", zap.Int64("operator_id", event.OperatorID), zap.String("kind", string(event.Kind)), zap.Error(err))
		return nil
	}
	s.metrics.RecordDialogueEvent(event.Kind)

	var err error
	switch event.Kind {
	case models.EventOpenPanel:
		err = s.showPanel(ctx, event.OperatorID)
	case models.EventListRecords:
		err = s.showRecords(ctx, event)
	case models.EventStartEdit:
		err = s.startEdit(ctx, event)
	case models.EventChooseField:
		err = s.beginDialogue(ctx, event.OperatorID, event.Catalog, event.RecordID, event.FieldID)
	case models.EventSubmitValue:
		err = s.submitValue(ctx, event)
	case models.EventCancel:
		err = s.cancel(ctx, event.OperatorID)
	}
	if err != nil {
		return s.fail(ctx, event.OperatorID, err)
	}
	return nil
}

func (s *DialogueService) showPanel(ctx context.Context, operatorID int64) error {
	if !s.auth.IsAuthorized(operatorID) {
		return appErrors.ErrAuthorization
	}
	choices := make([]models.Choice, 0, len(models.Catalogs))
	for _, catalog := range models.Catalogs {
		editor, ok := s.editors.Get(catalog)
		if !ok {
			continue
		}
		kind := models.EventListRecords
		if catalog == models.CatalogSessionPeriod {
			kind = models.EventStartEdit
		}
		choices = append(choices, models.Choice{Label: editor.Title(), Event: models.Event{Kind: kind, Catalog: catalog}})
	}
	return s.presenter.Prompt(ctx, operatorID, msgPanel, choices)
}

func (s *DialogueService) showRecords(ctx context.Context, event models.Event) error {
	if !s.auth.IsAuthorized(event.OperatorID) {
		return appErrors.ErrAuthorization
	}
	back := models.Choice{Label: labelBack, Event: models.Event{Kind: models.EventOpenPanel}}

	if event.Catalog == models.CatalogSchedule && event.Payload == "" {
		days, err := s.catalogs.ScheduleDays(ctx)
		if err != nil {
			return err
		}
		if len(days) == 0 {
			return s.presenter.Prompt(ctx, event.OperatorID, msgNoRecords, []models.Choice{back})
		}
		choices := make([]models.Choice, 0, len(days)+1)
		for _, day := range days {
			choices = append(choices, models.Choice{Label: day, Event: models.Event{Kind: models.EventListRecords, Catalog: models.CatalogSchedule, Payload: day}})
		}
		return s.presenter.Prompt(ctx, event.OperatorID, msgChooseDay, append(choices, back))
	}

	if event.Catalog == models.CatalogSchedule {
		back = models.Choice{Label: labelBack, Event: models.Event{Kind: models.EventListRecords, Catalog: models.CatalogSchedule}}
	}
	records, err := s.catalogs.List(ctx, event.Catalog, event.Payload)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return s.presenter.Prompt(ctx, event.OperatorID, msgNoRecords, []models.Choice{back})
	}
	choices := make([]models.Choice, 0, len(records)+1)
	for _, r := range records {
		id := r.ID
		choices = append(choices, models.Choice{Label: r.Label, Event: models.Event{Kind: models.EventStartEdit, Catalog: event.Catalog, RecordID: &id}})
	}
	return s.presenter.Prompt(ctx, event.OperatorID, msgChooseRecord, append(choices, back))
}

func (s *DialogueService) startEdit(ctx context.Context, event models.Event) error {
	if !s.auth.IsAuthorized(event.OperatorID) {
		return appErrors.ErrAuthorization
	}
	editor, err := s.editor(event.Catalog)
	if err != nil {
		return err
	}
	if !editor.SelectsField() || event.FieldID != "" {
		return s.beginDialogue(ctx, event.OperatorID, event.Catalog, event.RecordID, event.FieldID)
	}
	if event.RecordID == nil {
		return appErrors.Clone(appErrors.ErrState, "no record selected, please start again")
	}

	fields := editor.Fields()
	choices := make([]models.Choice, 0, len(fields)+1)
	for _, f := range fields {
		choices = append(choices, models.Choice{Label: f.Label, Event: models.Event{Kind: models.EventChooseField, Catalog: event.Catalog, RecordID: event.RecordID, FieldID: f.ID}})
	}
	choices = append(choices, models.Choice{Label: labelBack, Event: models.Event{Kind: models.EventListRecords, Catalog: event.Catalog}})
	return s.presenter.Prompt(ctx, event.OperatorID, msgChooseField, choices)
}

func (s *DialogueService) beginDialogue(ctx context.Context, operatorID int64, catalog models.Catalog, recordID *int64, fieldID string) error {
	session, err := s.Start(ctx, operatorID, catalog, recordID, fieldID)
	if err != nil {
		return err
	}
	return s.promptField(ctx, session)
}

func (s *DialogueService) submitValue(ctx context.Context, event models.Event) error {
	session, committed, err := s.SubmitField(ctx, event.OperatorID, event.FieldID, event.Payload)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrValidation.Code && session.State() == models.StateAwaitingField {
			if perr := s.presenter.Prompt(ctx, event.OperatorID, fmt.Sprintf(msgFailure, appErr.Message), nil); perr != nil {
				return perr
			}
			return s.promptField(ctx, session)
		}
		return err
	}
	if committed {
		return s.presenter.Prompt(ctx, event.OperatorID, msgSaved, []models.Choice{{Label: labelPanel, Event: models.Event{Kind: models.EventOpenPanel}}})
	}
	return s.promptField(ctx, session)
}

func (s *DialogueService) cancel(ctx context.Context, operatorID int64) error {
	cancelled, err := s.Cancel(ctx, operatorID)
	if err != nil {
		return err
	}
	text := msgNothingPending
	if cancelled {
		text = msgCancelled
	}
	var choices []models.Choice
	if s.auth.IsAuthorized(operatorID) {
		choices = []models.Choice{{Label: labelPanel, Event: models.Event{Kind: models.EventOpenPanel}}}
	}
	return s.presenter.Prompt(ctx, operatorID, text, choices)
}

func (s *DialogueService) promptField(ctx context.Context, session *models.DialogueSession) error {
	editor, err := s.editor(session.Catalog)
	if err != nil {
		return err
	}
	field, ok := findField(editor.Fields(), session.CurrentField())
	if !ok {
		return unknownField(session.CurrentField())
	}

	text := field.Prompt
	if current, ok := session.Current[field.ID]; ok && current != "" {
		text = fmt.Sprintf(msgCurrentValue, current) + "\n" + text
	}
	choices := make([]models.Choice, 0, len(field.Options)+1)
	for _, opt := range field.Options {
		choices = append(choices, models.Choice{Label: opt, Event: models.Event{Kind: models.EventSubmitValue, FieldID: field.ID, Payload: opt}})
	}
	choices = append(choices, models.Choice{Label: labelCancel, Event: models.Event{Kind: models.EventCancel}})
	return s.presenter.Prompt(ctx, session.OperatorID, text, choices)
}

// fail reports err to the operator. Anything other than a denial, a conflict or a rejected
// value also returns the operator to Idle.
func (s *DialogueService) fail(ctx context.Context, operatorID int64, err error) error {
	appErr := appErrors.FromError(err)
	text := appErr.Message

	switch appErr.Code {
	case appErrors.ErrAuthorization.Code:
		s.logger.Warn("unauthorized edit attempt", zap.Int64("operator_id", operatorID))
		return s.presenter.Prompt(ctx, operatorID, msgDenied, nil)
	case appErrors.ErrSessionConflict.Code:
		s.logger.Info("dialogue conflict", zap.Int64("operator_id", operatorID))
		return s.presenter.Prompt(ctx, operatorID, fmt.Sprintf(msgFailure, text)+"\n"+msgConflictHint, nil)
	case appErrors.ErrValidation.Code:
		s.logger.Info("rejected operator input", zap.Int64("operator_id", operatorID), zap.Error(err))
	case appErrors.ErrState.Code, appErrors.ErrNotFound.Code:
		s.logger.Info("dialogue reset", zap.Int64("operator_id", operatorID), zap.Error(err))
		s.reset(ctx, operatorID)
	case appErrors.ErrStorage.Code:
		s.logger.Error("dialogue storage failure", zap.Int64("operator_id", operatorID), zap.Error(err))
		s.reset(ctx, operatorID)
	default:
		s.logger.Error("dialogue failure", zap.Int64("operator_id", operatorID), zap.Error(err))
		s.reset(ctx, operatorID)
		text = msgGenericFailure
	}
	return s.presenter.Prompt(ctx, operatorID, fmt.Sprintf(msgFailure, text), nil)
}

func (s *DialogueService) reset(ctx context.Context, operatorID int64) {
	unlock := s.lock(operatorID)
	defer unlock()
	getCtx, cancel := cleanupContext(ctx)
	session, err := s.store.Get(getCtx, operatorID)
	cancel()
	if err != nil {
		s.logger.Error("failed to load dialogue session for reset", zap.Int64("operator_id", operatorID), zap.Error(err))
		return
	}
	if session == nil {
		return
	}
	s.drop(ctx, operatorID)
	s.metrics.RecordDialogueOutcome(session.Catalog, OutcomeFailed)
}

// RunJanitor sweeps expired sessions every interval until ctx is cancelled.
func (s *DialogueService) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || s.idleTTL <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep drops expired sessions from the store.
func (s *DialogueService) Sweep(ctx context.Context) int {
	removed, err := s.store.Sweep(ctx, s.now())
	if err != nil {
		s.logger.Warn("dialogue sweep failed", zap.Error(err))
		return 0
	}
	if removed > 0 {
		s.logger.Info("expired dialogues swept", zap.Int("removed", removed))
		s.refreshActive(ctx)
	}
	return removed
}
