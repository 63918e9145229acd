package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/weatherwatch/backend/internal/domain"
	"github.com/weatherwatch/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	authSvc     *service.AuthService
	weatherSvc  *service.WeatherService
	alertSvc    *service.AlertService
	locationSvc *service.LocationService
	repo        service.Repository
}

// NewHandler creates a new handler
func NewHandler(
	authSvc *service.AuthService,
	weatherSvc *service.WeatherService,
	alertSvc *service.AlertService,
	locationSvc *service.LocationService,
	repo service.Repository,
) *Handler {
	return &Handler{
		authSvc:     authSvc,
		weatherSvc:  weatherSvc,
		alertSvc:    alertSvc,
		locationSvc: locationSvc,
		repo:        repo,
	}
}

// mapError translates domain errors into HTTP statuses: validation and
// unknown-row problems are the client's fault, provider failures are a bad
// gateway, everything else is internal.
func mapError(err error) error {
	var verr *domain.ValidationError
	var uerr *domain.UpstreamError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Msg)
	case errors.As(err, &uerr):
		return fiber.NewError(fiber.StatusBadGateway, uerr.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "Incorrect username or password")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
}

// HealthCheck returns service and storage health.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if err := h.repo.Health(c.Context()); err != nil {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":  status,
		"service": "weatherwatch-backend",
	})
}

// Register creates a new account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if _, err := h.authSvc.Register(c.Context(), in); err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, err := h.authSvc.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated account.
func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// GetWeather returns the current reading for a location, served from the
// freshness cache or fetched on a miss.
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	location, err := locationParam(c)
	if err != nil {
		return err
	}

	reading, err := h.weatherSvc.GetWeather(c.Context(), location)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(reading)
}

// GetWeatherHistory returns every logged reading for a location.
func (h *Handler) GetWeatherHistory(c *fiber.Ctx) error {
	location, err := locationParam(c)
	if err != nil {
		return err
	}

	readings, err := h.weatherSvc.GetHistory(c.Context(), location)
	if err != nil {
		return mapError(err)
	}
	if readings == nil {
		readings = []domain.Reading{}
	}
	return c.JSON(readings)
}

func locationParam(c *fiber.Ctx) (string, error) {
	loc := c.Params("location")
	if loc == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "location is required")
	}
	return loc, nil
}

// SaveLocation bookmarks a location for the authenticated user.
func (h *Handler) SaveLocation(c *fiber.Ctx) error {
	location := c.Query("location")
	if err := h.locationSvc.Save(c.Context(), currentUser(c).ID, location); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Location saved successfully"})
}

// GetLocations returns the authenticated user's bookmarked locations.
func (h *Handler) GetLocations(c *fiber.Ctx) error {
	locations, err := h.locationSvc.List(c.Context(), currentUser(c).ID)
	if err != nil {
		return mapError(err)
	}
	if locations == nil {
		locations = []string{}
	}
	return c.JSON(locations)
}

// DeleteLocation removes a bookmarked location.
func (h *Handler) DeleteLocation(c *fiber.Ctx) error {
	location := c.Query("location")
	if err := h.locationSvc.Delete(c.Context(), currentUser(c).ID, location); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Location deleted successfully"})
}

// CreateAlert validates and stores a threshold alert.
func (h *Handler) CreateAlert(c *fiber.Ctx) error {
	var in service.AlertInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if _, err := h.alertSvc.Create(c.Context(), currentUser(c).ID, in); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Alert created successfully"})
}

type alertUpdateRequest struct {
	ID int64 `json:"id"`
	service.AlertInput
}

// UpdateAlert validates and rewrites an existing alert.
func (h *Handler) UpdateAlert(c *fiber.Ctx) error {
	var req alertUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.alertSvc.Update(c.Context(), currentUser(c).ID, req.ID, req.AlertInput); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Alert edited successfully"})
}

type alertDeleteRequest struct {
	ID int64 `json:"id"`
}

// DeleteAlert removes an alert.
func (h *Handler) DeleteAlert(c *fiber.Ctx) error {
	var req alertDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.alertSvc.Delete(c.Context(), currentUser(c).ID, req.ID); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Alert deleted successfully"})
}

// GetAlerts returns the authenticated user's alerts.
func (h *Handler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.alertSvc.List(c.Context(), currentUser(c).ID)
	if err != nil {
		return mapError(err)
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return c.JSON(alerts)
}

// GetNotifications returns the firings recorded for the user's alerts.
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	ns, err := h.alertSvc.Notifications(c.Context(), currentUser(c).ID)
	if err != nil {
		return mapError(err)
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return c.JSON(ns)
}
