package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/site-scraper/internal/middleware"
	"github.com/octobees/site-scraper/internal/service"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Success sends a successful acknowledgement using the shared envelope format.
func Success(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		OK:        true,
		Message:   message,
		RequestID: middlewarepkg.RequestIDFromContext(c),
	})
}

// Fail sends an error response carrying a machine readable code.
func Fail(c echo.Context, status int, code, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Error:     code,
		Message:   message,
		RequestID: middlewarepkg.RequestIDFromContext(c),
	})
}

// FailWith maps a service error onto its status and code.
func FailWith(c echo.Context, err error) error {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "unexpected server error"
	}
	return Fail(c, status, code, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingURL):
		return http.StatusBadRequest, "missing_url"
	case errors.Is(err, service.ErrInvalidURL):
		return http.StatusBadRequest, "invalid_url"
	case errors.Is(err, service.ErrFetchFailed):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, service.ErrExtractFailed):
		return http.StatusUnprocessableEntity, "extract_failed"
	case errors.Is(err, service.ErrAuthRequired):
		return http.StatusUnauthorized, "auth_required"
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusNotImplemented, "storage_unavailable"
	case errors.Is(err, service.ErrUserConfigMissing):
		return http.StatusNotFound, "user_config_missing"
	case errors.Is(err, service.ErrEncKeyMismatch):
		return http.StatusConflict, "enc_key_mismatch"
	case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrInvalidTableID):
		return http.StatusBadRequest, "missing_fields"
	case errors.Is(err, service.ErrCredential):
		return http.StatusBadGateway, "credential_failed"
	case errors.Is(err, service.ErrWriteFailed):
		return http.StatusBadGateway, "write_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// HTTPErrorHandler renders errors escaping handlers, including recovered
// panics and unmatched routes, with the shared envelope.
func HTTPErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, message := http.StatusInternalServerError, "internal_error", "unexpected server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch status {
			case http.StatusNotFound:
				code, message = "not_found", "route not found"
			case http.StatusMethodNotAllowed:
				code, message = "method_not_allowed", "method not allowed"
			case http.StatusUnauthorized:
				code, message = "auth_required", "authentication required"
			case http.StatusRequestEntityTooLarge:
				code, message = "invalid_body", "request body too large"
			default:
				if status < http.StatusInternalServerError {
					code, message = "invalid_body", http.StatusText(status)
				}
			}
		}
		if status >= http.StatusInternalServerError && logger != nil {
			logger.Error("unhandled error", "request_id", middlewarepkg.RequestIDFromContext(c), "err", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = Fail(c, status, code, message)
		}
		if werr != nil && logger != nil {
			logger.Error("write error response", "err", werr)
		}
	}
}
