package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/site-scraper/internal/middleware"
	"github.com/octobees/site-scraper/internal/service"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, rec.Body.String())
	}
	return payload
}

func TestSuccess(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeyRequestID, "rid-1")

	if err := Success(c, 0, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	payload := decodeEnvelope(t, rec)
	if !payload.OK || payload.Message != "hello" || payload.RequestID != "rid-1" {
		t.Fatalf("unexpected response: %+v", payload)
	}
}

func TestFail(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Fail(c, 0, "internal_error", "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected default status 500, got %d", rec.Code)
	}

	payload := decodeEnvelope(t, rec)
	if payload.OK || payload.Error != "internal_error" || payload.Message != "boom" {
		t.Fatalf("unexpected response: %+v", payload)
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		err    error
		status int
		code   string
	}{
		"missing url":     {service.ErrMissingURL, http.StatusBadRequest, "missing_url"},
		"invalid url":     {service.ErrInvalidURL, http.StatusBadRequest, "invalid_url"},
		"fetch":           {fmt.Errorf("%w: timeout", service.ErrFetchFailed), http.StatusBadGateway, "fetch_failed"},
		"extract":         {fmt.Errorf("%w: html", service.ErrExtractFailed), http.StatusUnprocessableEntity, "extract_failed"},
		"auth":            {service.ErrAuthRequired, http.StatusUnauthorized, "auth_required"},
		"storage":         {service.ErrStorageUnavailable, http.StatusNotImplemented, "storage_unavailable"},
		"missing config":  {service.ErrUserConfigMissing, http.StatusNotFound, "user_config_missing"},
		"key mismatch":    {service.ErrEncKeyMismatch, http.StatusConflict, "enc_key_mismatch"},
		"missing fields":  {service.ErrMissingFields, http.StatusBadRequest, "missing_fields"},
		"bad table":       {service.ErrInvalidTableID, http.StatusBadRequest, "missing_fields"},
		"write":           {fmt.Errorf("%w: 1254045", service.ErrWriteFailed), http.StatusBadGateway, "write_failed"},
		"anything else":   {errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			status, code := classify(tc.err)
			if status != tc.status || code != tc.code {
				t.Fatalf("expected %d %s, got %d %s", tc.status, tc.code, status, code)
			}
		})
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(nil)
	e.GET("/panic", func(c echo.Context) error {
		return errors.New("unexpected")
	})

	tests := map[string]struct {
		path   string
		status int
		code   string
	}{
		"unmatched route": {path: "/nope", status: http.StatusNotFound, code: "not_found"},
		"plain error":     {path: "/panic", status: http.StatusInternalServerError, code: "internal_error"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if payload := decodeEnvelope(t, rec); payload.OK || payload.Error != tc.code {
				t.Fatalf("unexpected payload %+v", payload)
			}
		})
	}
}
