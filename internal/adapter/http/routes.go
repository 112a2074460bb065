// Package http provides the HTTP handler layer for the offer search API.
package http

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all offer search API routes.
// It creates a versioned API group and attaches the handler methods.
func RegisterRoutes(e *echo.Echo, h *OfferHandler) {
	// Health check endpoint (no version prefix)
	e.GET("/health", h.Health)

	// API v1 group
	api := e.Group("/api/v1")

	offers := api.Group("/offers")
	offers.POST("/search", h.SearchOffers)
	offers.POST("/plan", h.PlanOffers)

	places := api.Group("/places")
	places.GET("/resolve", h.ResolvePlace)
	places.GET("/airports", h.ListAirports)
}

// RegisterRoutesWithMiddleware registers routes with custom middleware.
// This allows for endpoint-specific middleware configuration.
func RegisterRoutesWithMiddleware(e *echo.Echo, h *OfferHandler, middleware ...echo.MiddlewareFunc) {
	// Health check endpoint (no version prefix, no middleware)
	e.GET("/health", h.Health)

	api := e.Group("/api/v1", middleware...)

	offers := api.Group("/offers")
	offers.POST("/search", h.SearchOffers)
	offers.POST("/plan", h.PlanOffers)

	places := api.Group("/places")
	places.GET("/resolve", h.ResolvePlace)
	places.GET("/airports", h.ListAirports)
}
