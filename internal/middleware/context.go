package middleware

import (
	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/site-scraper/internal/auth"
)

// Context keys used to store request metadata.
const (
	ContextKeySubject   = "subject"
	ContextKeyEmail     = "email"
	ContextKeyRequestID = "request_id"
)

// IdentityFromContext returns the caller verified by Identify or RequireIdentity.
func IdentityFromContext(c echo.Context) (authpkg.Identity, bool) {
	subject, _ := c.Get(ContextKeySubject).(string)
	if subject == "" {
		return authpkg.Identity{}, false
	}
	email, _ := c.Get(ContextKeyEmail).(string)
	return authpkg.Identity{Subject: subject, Email: email}, true
}

// SubjectFromContext returns the caller's subject or "" for anonymous requests.
func SubjectFromContext(c echo.Context) string {
	subject, _ := c.Get(ContextKeySubject).(string)
	return subject
}

// errorBody mirrors the handler envelope for responses written by middleware.
type errorBody struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func abort(c echo.Context, status int, code, message string) error {
	return c.JSON(status, errorBody{
		Error:     code,
		Message:   message,
		RequestID: RequestIDFromContext(c),
	})
}
