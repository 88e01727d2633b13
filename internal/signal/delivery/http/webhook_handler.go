package http

import (
	"encoding/json"
	"io"
	"net/http"

	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/internal/signal/service"
	"stock-signal-relay/pkg/common"
	"stock-signal-relay/pkg/linebot"
	"stock-signal-relay/pkg/logger"

	"github.com/labstack/echo/v4"
)

// maxWebhookBody bounds the raw body read for signature checking.
const maxWebhookBody = 1 << 20

// WebhookHandler handles inbound chat webhooks.
type WebhookHandler struct {
	messageService service.MessageService
	channelSecret  string
	logger         *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(messageService service.MessageService, channelSecret string, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{messageService: messageService, channelSecret: channelSecret, logger: logger}
}

// RegisterRoutes registers the webhook route to the Echo group.
func (h *WebhookHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.HandleWebhook)
}

// HandleWebhook godoc
// @Summary Receive chat events
// @Description Verifies the channel signature over the raw body and answers each text message event
// @Tags webhook
// @Accept  json
// @Produce  json
// @Param   X-Line-Signature header string true "Base64 HMAC-SHA256 of the body"
// @Param   body body dto.WebhookRequest true "Webhook events"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /webhook [post]
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to read webhook body", logger.ErrorField(err))
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	}

	signature := c.Request().Header.Get(common.HeaderLineSignature)
	if !linebot.ValidateSignature(body, signature, h.channelSecret) {
		h.logger.WarnContext(ctx, "Rejected webhook", logger.ErrorField(linebot.ErrInvalidSignature))
		return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
	}

	var req dto.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode webhook body", logger.ErrorField(err))
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	h.messageService.HandleEvents(ctx, req.Events)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
