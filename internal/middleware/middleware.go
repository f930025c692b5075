package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"paygate/internal/models"
)

// CORS allows the storefront preview and publish hosts to call the API
// from the browser.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Token, X-Site")
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}

// APIAuth validates the Token header against the configured API key.
// Gateway credential management is operator-only; the payment endpoints
// themselves stay open for the storefront.
func APIAuth(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get("Token")
			if token == "" || token != apiKey {
				return c.JSON(http.StatusUnauthorized, models.Fail("invalid token", http.StatusUnauthorized))
			}
			return next(c)
		}
	}
}
