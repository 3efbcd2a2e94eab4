package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/site-scraper/internal/dto"
)

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	h := NewHealthHandler(dto.HealthConfig{HasAppID: true, HasEncKey: true})
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
	if err := h.Health(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp dto.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.Timestamp != "2026-01-02T03:04:05Z" || !resp.Config.HasAppID || resp.Config.HasTableID || !resp.Config.HasEncKey {
		t.Fatalf("unexpected health response %+v", resp)
	}
}
