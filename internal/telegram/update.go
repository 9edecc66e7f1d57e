package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// Bot commands understood by the editor.
const (
	CommandEditData = "edit_data"
	CommandCancel   = "cancel"
)

// EventFromUpdate turns an inbound update into a dialogue event. The boolean is false for
// updates the editor does not react to.
func EventFromUpdate(update tgbotapi.Update) (models.Event, bool, error) {
	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.From == nil {
			return models.Event{}, false, nil
		}
		event, err := DecodeCallback(query.Data)
		if err != nil {
			return models.Event{}, false, err
		}
		event.OperatorID = query.From.ID
		return event, true, nil

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return models.Event{}, false, nil
		}
		if msg.IsCommand() {
			switch msg.Command() {
			case CommandEditData:
				return models.Event{OperatorID: msg.From.ID, Kind: models.EventOpenPanel}, true, nil
			case CommandCancel:
				return models.Event{OperatorID: msg.From.ID, Kind: models.EventCancel}, true, nil
			default:
				return models.Event{}, false, nil
			}
		}
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return models.Event{}, false, nil
		}
		return models.Event{OperatorID: msg.From.ID, Kind: models.EventSubmitValue, Payload: text}, true, nil
	}
	return models.Event{}, false, nil
}
