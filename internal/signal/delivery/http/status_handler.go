package http

import (
	"net/http"

	"stock-signal-relay/internal/signal/service"
	"stock-signal-relay/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler reports usage and health.
type StatusHandler struct {
	statusService service.StatusService
	logger        *logger.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(statusService service.StatusService, logger *logger.Logger) *StatusHandler {
	return &StatusHandler{statusService: statusService, logger: logger}
}

// RegisterRoutes registers the status routes to the Echo group.
func (h *StatusHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetStatus)
	g.POST("", h.GetStatus)
}

// GetStatus godoc
// @Summary Service status
// @Description Daily usage against the ceilings, dependency health and stored data size
// @Tags status
// @Produce  json
// @Success 200 {object} dto.StatusResponse
// @Router /status [get]
func (h *StatusHandler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.statusService.Status(c.Request().Context()))
}
