package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenMiddleware validates the service auth token from the Authorization
// header (Bearer scheme) or the token query parameter. If the configured
// token is empty, authentication is disabled (development mode).
func TokenMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return next(c)
			}

			provided := ""
			if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				provided = strings.TrimPrefix(h, "Bearer ")
			}
			if provided == "" {
				provided = c.QueryParam("token")
			}

			if provided == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "missing auth token",
				})
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "invalid auth token",
				})
			}

			return next(c)
		}
	}
}
