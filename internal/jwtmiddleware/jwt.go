package jwtmiddleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pdv/internal/service"
)

// RequireToken guards a route group with a bearer token. A request without
// a token gets 401; a request with a malformed, badly signed or expired
// token gets 403.
func RequireToken(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == header || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			claims, err := service.ParseAccessToken(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "invalid token")
			}

			sub, ok := claims["sub"].(float64)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "invalid token claims")
			}
			c.Set("userID", uint(sub))
			if name, ok := claims["name"].(string); ok {
				c.Set("userName", name)
			}
			if email, ok := claims["email"].(string); ok {
				c.Set("userEmail", email)
			}
			return next(c)
		}
	}
}
