package http

import (
	"net/http"

	"stock-signal-relay/internal/signal/service"
	"stock-signal-relay/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TriggerHandler exposes the scheduled analysis to an external scheduler.
type TriggerHandler struct {
	triggerService service.TriggerService
	logger         *logger.Logger
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(triggerService service.TriggerService, logger *logger.Logger) *TriggerHandler {
	return &TriggerHandler{triggerService: triggerService, logger: logger}
}

// RegisterRoutes registers the trigger route to the Echo group.
func (h *TriggerHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/analysis", h.RunAnalysis)
}

// RunAnalysis godoc
// @Summary Run the scheduled analysis
// @Description Regenerates the cached analysis inside the trading window; a no-op outside it
// @Tags cron
// @Produce  json
// @Success 200 {object} dto.TriggerResponse
// @Router /cron/analysis [post]
func (h *TriggerHandler) RunAnalysis(c echo.Context) error {
	resp := h.triggerService.Run(c.Request().Context())
	return c.JSON(http.StatusOK, resp)
}
