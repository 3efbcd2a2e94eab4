package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/site-scraper/internal/dto"
	"github.com/octobees/site-scraper/internal/entity"
	middlewarepkg "github.com/octobees/site-scraper/internal/middleware"
	"github.com/octobees/site-scraper/internal/service"
)

// FeishuHandler exposes credential checks against Bitable.
type FeishuHandler struct {
	writer *service.BitableWriter
}

// NewFeishuHandler constructs a FeishuHandler.
func NewFeishuHandler(writer *service.BitableWriter) *FeishuHandler {
	return &FeishuHandler{writer: writer}
}

// Validate handles POST /feishu/validate requests.
func (h *FeishuHandler) Validate(c echo.Context) error {
	var req dto.ValidateFeishuRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
	}

	res, err := h.writer.Validate(c.Request().Context(),
		strings.TrimSpace(req.AppID), strings.TrimSpace(req.AppSecret), strings.TrimSpace(req.AppToken))
	if err != nil {
		if errors.Is(err, service.ErrCredential) {
			return c.JSON(http.StatusOK, dto.ValidateFeishuResponse{
				RequestID: middlewarepkg.RequestIDFromContext(c),
				Step:      "token",
			})
		}
		return FailWith(c, err)
	}

	resp := dto.ValidateFeishuResponse{
		OK:        true,
		RequestID: middlewarepkg.RequestIDFromContext(c),
		Step:      "done",
		TokenOK:   res.TokenOK,
	}
	if check := res.AppCheck; check != nil {
		resp.AppCheck = &dto.AppCheck{
			OK:       check.OK,
			AppToken: check.AppToken,
			Name:     check.Name,
			Code:     check.Code,
			Message:  check.Message,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Ping handles POST /feishu/ping requests.
func (h *FeishuHandler) Ping(c echo.Context) error {
	var req dto.PingFeishuRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
	}

	cfg := entity.FeishuConfig{
		AppID:           strings.TrimSpace(req.AppID),
		AppSecret:       strings.TrimSpace(req.AppSecret),
		TableID:         strings.TrimSpace(req.TableID),
		BitableAppToken: strings.TrimSpace(req.AppToken),
	}
	res, err := h.writer.Ping(c.Request().Context(), cfg, req.Message)
	if err != nil {
		return FailWith(c, err)
	}

	return c.JSON(http.StatusOK, dto.PingFeishuResponse{
		OK:        true,
		RequestID: middlewarepkg.RequestIDFromContext(c),
		RecordID:  res.RecordID,
		FieldName: res.FieldName,
	})
}
