package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/weatherwatch/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, h *Handler, authSvc *service.AuthService) {
	auth := AuthRequired(authSvc)

	// Health check
	app.Get("/health", h.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Auth endpoints
		api.Post("/auth/register", h.Register)
		api.Post("/auth/login", h.Login)
		api.Get("/auth/me", auth, h.Me)

		// Saved locations
		api.Post("/locations", auth, h.SaveLocation)
		api.Get("/locations", auth, h.GetLocations)
		api.Delete("/locations", auth, h.DeleteLocation)

		// Threshold alerts and their notifications
		api.Post("/alerts", auth, h.CreateAlert)
		api.Put("/alerts", auth, h.UpdateAlert)
		api.Delete("/alerts", auth, h.DeleteAlert)
		api.Get("/alerts", auth, h.GetAlerts)
		api.Get("/alerts/notifications", auth, h.GetNotifications)

		// Weather (cache-or-fetch) and history
		api.Get("/weather/:location", auth, h.GetWeather)
		api.Get("/weather/:location/history", auth, h.GetWeatherHistory)
	}
}
