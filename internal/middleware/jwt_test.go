package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/site-scraper/internal/auth"
)

func TestRequireIdentity(t *testing.T) {
	e := echo.New()
	manager := auth.NewJWTManager("secret", 0)

	token, err := manager.GenerateToken("user-1", "user@acme.ie")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := map[string]struct {
		manager    *auth.JWTManager
		header     string
		expectCode int
	}{
		"missing header": {
			manager:    manager,
			expectCode: http.StatusUnauthorized,
		},
		"invalid header": {
			manager:    manager,
			header:     "Basic token",
			expectCode: http.StatusUnauthorized,
		},
		"invalid token": {
			manager:    manager,
			header:     "Bearer invalid",
			expectCode: http.StatusUnauthorized,
		},
		"auth disabled": {
			manager:    auth.NewJWTManager("", 0),
			header:     "Bearer " + token,
			expectCode: http.StatusUnauthorized,
		},
		"success": {
			manager:    manager,
			header:     "Bearer " + token,
			expectCode: http.StatusOK,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			executed := false
			err := RequireIdentity(tt.manager)(func(c echo.Context) error {
				executed = true
				id, ok := IdentityFromContext(c)
				if !ok || id.Subject != "user-1" || id.Email != "user@acme.ie" {
					t.Fatalf("expected identity in context, got %+v", id)
				}
				return c.NoContent(http.StatusOK)
			})(c)
			if err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}

			if tt.expectCode == http.StatusOK && !executed {
				t.Fatalf("expected next handler to be executed")
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d", tt.expectCode, rec.Code)
			}
		})
	}
}

func TestIdentifyIsOptional(t *testing.T) {
	e := echo.New()
	manager := auth.NewJWTManager("secret", 0)
	token, err := manager.GenerateToken("user-2", "")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := map[string]struct {
		header  string
		subject string
	}{
		"anonymous":     {},
		"invalid token": {header: "Bearer nope"},
		"valid token":   {header: "Bearer " + token, subject: "user-2"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/extract", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			called := false
			if err := Identify(manager)(func(c echo.Context) error {
				called = true
				if got := SubjectFromContext(c); got != tt.subject {
					t.Fatalf("expected subject %q, got %q", tt.subject, got)
				}
				return c.NoContent(http.StatusOK)
			})(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !called {
				t.Fatalf("expected handler to run")
			}
		})
	}
}
