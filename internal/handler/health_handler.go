package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/site-scraper/internal/dto"
)

// HealthHandler reports liveness and which settings are present, never their values.
type HealthHandler struct {
	config dto.HealthConfig
	now    func() time.Time
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(config dto.HealthConfig) *HealthHandler {
	return &HealthHandler{config: config, now: time.Now}
}

// Health handles GET /healthz requests.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		OK:        true,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Config:    h.config,
		Message:   "service healthy",
	})
}
