package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/site-scraper/internal/dto"
	middlewarepkg "github.com/octobees/site-scraper/internal/middleware"
	"github.com/octobees/site-scraper/internal/service"
)

// ExtractHandler exposes the extraction endpoint.
type ExtractHandler struct {
	extractService *service.ExtractService
}

// NewExtractHandler constructs an ExtractHandler.
func NewExtractHandler(extractService *service.ExtractService) *ExtractHandler {
	return &ExtractHandler{extractService: extractService}
}

// Extract handles POST /extract and GET /extract?url= requests.
func (h *ExtractHandler) Extract(c echo.Context) error {
	var req dto.ExtractRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
	}
	target := req.TargetURL()
	if target == "" {
		target = firstNonEmpty(c.QueryParam("url"), c.QueryParam("u"))
	}

	out, err := h.extractService.Extract(c.Request().Context(), service.ExtractInput{
		URL:     target,
		Render:  req.Render,
		Config:  service.RequestConfig(req),
		Subject: middlewarepkg.SubjectFromContext(c),
	})
	if err != nil {
		return FailWith(c, err)
	}

	return c.JSON(http.StatusOK, dto.ExtractResponse{
		OK:            true,
		RequestID:     middlewarepkg.RequestIDFromContext(c),
		URL:           out.URL,
		Results:       out.Record,
		FeishuSuccess: out.Write.Success(),
		FeishuStatus:  out.Write.Status,
		FeishuMessage: out.Write.Message,
		FeishuError:   writeError(out.Write),
		RecordID:      out.Write.RecordID,
		ConfigStatus:  out.Config.Status(out.HasUserConfig),
	})
}

func writeError(w service.WriteOutcome) string {
	if w.Status == service.WriteFailed {
		return w.Message
	}
	if w.Status == service.WriteSkipped {
		return w.Code
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
