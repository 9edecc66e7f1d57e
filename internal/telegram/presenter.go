package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// BotAPI is the subset of *tgbotapi.BotAPI used for outbound calls.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Presenter renders prompts as chat messages with one inline button per choice. Operators talk
// to the bot in a private chat, so the operator id doubles as the chat id.
type Presenter struct {
	bot    BotAPI
	logger *zap.Logger
}

// NewPresenter constructs a Presenter.
func NewPresenter(bot BotAPI, logger *zap.Logger) *Presenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Presenter{bot: bot, logger: logger}
}

// Prompt sends text with the given choices.
func (p *Presenter) Prompt(ctx context.Context, operatorID int64, text string, choices []models.Choice) error {
	msg := tgbotapi.NewMessage(operatorID, text)
	if len(choices) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
		for _, choice := range choices {
			data, err := EncodeCallback(choice.Event)
			if err != nil {
				return fmt.Errorf("render choice %q: %w", choice.Label, err)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(choice.Label, data)))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", operatorID, err)
	}
	return nil
}

// AnswerCallback acknowledges a button press so the client stops its progress indicator.
func (p *Presenter) AnswerCallback(ctx context.Context, callbackID string) {
	if callbackID == "" {
		return
	}
	if _, err := p.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		p.logger.Warn("failed to answer callback", zap.String("callback_id", callbackID), zap.Error(err))
	}
}
