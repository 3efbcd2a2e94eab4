package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/site-scraper/internal/auth"
)

// Identify stores the caller's identity when a valid bearer token is present.
// Requests without one, or with an invalid one, continue anonymously.
func Identify(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok && manager.Enabled() {
				if id, err := manager.ParseToken(token); err == nil {
					setIdentity(c, id)
				}
			}
			return next(c)
		}
	}
}

// RequireIdentity rejects requests without a valid bearer token.
func RequireIdentity(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return abort(c, http.StatusUnauthorized, "auth_required", "missing bearer token")
			}
			if !manager.Enabled() {
				return abort(c, http.StatusUnauthorized, "auth_required", "authentication is not configured")
			}

			id, err := manager.ParseToken(token)
			if err != nil {
				return abort(c, http.StatusUnauthorized, "auth_required", "invalid token")
			}

			setIdentity(c, id)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setIdentity(c echo.Context, id authpkg.Identity) {
	c.Set(ContextKeySubject, id.Subject)
	c.Set(ContextKeyEmail, id.Email)
}
