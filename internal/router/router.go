package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"paygate/internal/handler"
	"paygate/internal/middleware"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	paymentHandler *handler.PaymentHandler,
	adminHandler *handler.AdminHandler,
	apiKey string,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Storefront-facing payment API
	payments := e.Group("/api/payments")
	payments.POST("/initiate", paymentHandler.Initiate)
	payments.POST("/verify", paymentHandler.Verify)
	payments.POST("/status", paymentHandler.Status)

	// Gateway redirect callbacks (hit by the customer's browser)
	callbacks := e.Group("/payment")
	callbacks.GET("/esewa/callback", paymentHandler.EsewaCallback)
	callbacks.GET("/khalti/callback", paymentHandler.KhaltiCallback)

	// Operator API
	admin := e.Group("/api/admin")
	admin.Use(middleware.APIAuth(apiKey))
	admin.POST("/gateways", adminHandler.UpsertGateway)
	admin.GET("/gateways", adminHandler.ListGateways)
	admin.GET("/transactions", adminHandler.ListTransactions)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
