package telegram

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
	"github.com/noah-isme/schedule-editor-bot/pkg/jobs"
)

// Dispatcher queues events; jobs sharing a key are handled in order.
type Dispatcher interface {
	Enqueue(job jobs.Job) error
}

// UpdateSource is the long-polling subset of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type callbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID string)
}

type eventHandler interface {
	Handle(ctx context.Context, event models.Event) error
}

// Intake decodes updates and hands them to the dispatcher keyed by operator.
type Intake struct {
	dispatcher Dispatcher
	answerer   callbackAnswerer
	logger     *zap.Logger
}

// NewIntake constructs an Intake.
func NewIntake(dispatcher Dispatcher, answerer callbackAnswerer, logger *zap.Logger) *Intake {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{dispatcher: dispatcher, answerer: answerer, logger: logger}
}

// Accept decodes one update and queues the resulting event. Updates the editor ignores are
// dropped silently.
func (i *Intake) Accept(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil && i.answerer != nil {
		i.answerer.AnswerCallback(ctx, update.CallbackQuery.ID)
	}

	event, ok, err := EventFromUpdate(update)
	if err != nil {
		i.logger.Warn("undecodable update", zap.Int("update_id", update.UpdateID), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	return i.dispatcher.Enqueue(jobs.Job{
		ID:      strconv.Itoa(update.UpdateID),
		Key:     event.OperatorID,
		Type:    string(event.Kind),
		Payload: event,
	})
}

// Poll long-polls Telegram until ctx is cancelled.
func (i *Intake) Poll(ctx context.Context, source UpdateSource, timeout int) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := source.GetUpdatesChan(cfg)
	i.logger.Info("polling for updates", zap.Int("timeout", timeout))

	for {
		select {
		case <-ctx.Done():
			source.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := i.Accept(ctx, update); err != nil {
				i.logger.Error("failed to queue update", zap.Int("update_id", update.UpdateID), zap.Error(err))
			}
		}
	}
}

// EventJobHandler adapts the dialogue driver to the job queue. A positive timeout bounds each
// event, storage round trips included.
func EventJobHandler(handler eventHandler, timeout time.Duration) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(models.Event)
		if !ok {
			return errors.New("job payload is not a dialogue event")
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return handler.Handle(ctx, event)
	}
}
