package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/site-scraper/internal/dto"
	middlewarepkg "github.com/octobees/site-scraper/internal/middleware"
	"github.com/octobees/site-scraper/internal/service"
)

// ConfigHandler manages the caller's saved destination config.
type ConfigHandler struct {
	configService *service.UserConfigService
}

// NewConfigHandler constructs a ConfigHandler.
func NewConfigHandler(configService *service.UserConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

// Save handles POST /config requests.
func (h *ConfigHandler) Save(c echo.Context) error {
	var req dto.SaveConfigRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
	}

	cfg := service.ConfigFromInput(dto.FeishuConfigInput{
		AppID:           firstNonEmpty(req.AppID, req.FeishuAppID),
		AppSecret:       firstNonEmpty(req.AppSecret, req.FeishuAppSecret),
		TableID:         firstNonEmpty(req.TableID, req.FeishuTableID),
		BitableAppToken: req.BitableAppToken,
		BitableURL:      req.BitableURL,
	})

	if _, err := h.configService.Save(c.Request().Context(), middlewarepkg.SubjectFromContext(c), cfg); err != nil {
		return FailWith(c, err)
	}
	return Success(c, http.StatusOK, "config saved")
}

// Get handles GET /config requests. The secret is masked.
func (h *ConfigHandler) Get(c echo.Context) error {
	saved, err := h.configService.Get(c.Request().Context(), middlewarepkg.SubjectFromContext(c))
	if err != nil {
		return FailWith(c, err)
	}

	resp := dto.ConfigResponse{
		OK:        true,
		RequestID: middlewarepkg.RequestIDFromContext(c),
		Config: dto.ConfigView{
			AppID:           saved.Config.AppID,
			AppSecret:       service.MaskSecret(saved.Config.AppSecret),
			TableID:         saved.Config.TableID,
			BitableAppToken: service.MaskSecret(saved.Config.BitableAppToken),
		},
	}
	if !saved.UpdatedAt.IsZero() {
		resp.UpdatedAt = saved.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

// Clear handles DELETE /config requests.
func (h *ConfigHandler) Clear(c echo.Context) error {
	if err := h.configService.Clear(c.Request().Context(), middlewarepkg.SubjectFromContext(c)); err != nil {
		return FailWith(c, err)
	}
	return Success(c, http.StatusOK, "config cleared")
}
