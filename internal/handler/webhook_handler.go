package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
	"github.com/noah-isme/schedule-editor-bot/pkg/response"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type updateAcceptor interface {
	Accept(ctx context.Context, update tgbotapi.Update) error
}

// WebhookHandler receives Telegram updates pushed over HTTPS.
type WebhookHandler struct {
	intake updateAcceptor
	secret string
	logger *zap.Logger
}

// NewWebhookHandler constructs a webhook handler. An empty secret disables the header check.
func NewWebhookHandler(intake updateAcceptor, secret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{intake: intake, secret: secret, logger: logger}
}

// Receive queues one update.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			response.Error(c, http.StatusUnauthorized, appErrors.Clone(appErrors.ErrAuthorization, "invalid webhook secret"))
			return
		}
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, http.StatusBadRequest, appErrors.CloneWrap(appErrors.ErrValidation, err, "invalid update payload"))
		return
	}

	if err := h.intake.Accept(c.Request.Context(), update); err != nil {
		h.logger.Error("failed to queue webhook update", zap.Int("update_id", update.UpdateID), zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, appErrors.CloneWrap(appErrors.ErrInternal, err, "update queue unavailable"))
		return
	}
	response.OK(c)
}
