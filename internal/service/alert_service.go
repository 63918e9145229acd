package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/weatherwatch/backend/internal/domain"
)

// AlertService handles threshold-alert CRUD. Comparator and field legality
// is enforced here, at creation and update time, so the worker only ever
// loads alerts with valid shapes.
type AlertService struct {
	alerts        domain.AlertRepository
	notifications domain.NotificationRepository
	validate      *validator.Validate
}

// NewAlertService creates a new alert service.
func NewAlertService(alerts domain.AlertRepository, notifications domain.NotificationRepository) *AlertService {
	return &AlertService{
		alerts:        alerts,
		notifications: notifications,
		validate:      validator.New(),
	}
}

// AlertInput carries a create or update request for a threshold alert.
type AlertInput struct {
	Location   string  `json:"location" validate:"required"`
	Field      string  `json:"column_name" validate:"required,oneof=temperature humidity pressure"`
	Comparator string  `json:"comparator" validate:"required,oneof=< <= > >="`
	Threshold  float64 `json:"number"`
}

func (s *AlertService) toAlert(userID int64, in AlertInput) (domain.Alert, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Alert{}, domain.NewValidationError("comparator or column is invalid")
	}
	return domain.Alert{
		UserID: userID,
		// Stored normalized so the worker's location lookup matches the
		// cache-keyed readings it evaluates.
		Location:   domain.NormalizeLocation(in.Location),
		Field:      domain.AlertField(in.Field),
		Comparator: in.Comparator,
		Threshold:  in.Threshold,
	}, nil
}

// Create validates and stores a new alert for userID.
func (s *AlertService) Create(ctx context.Context, userID int64, in AlertInput) (domain.Alert, error) {
	alert, err := s.toAlert(userID, in)
	if err != nil {
		return domain.Alert{}, err
	}
	return s.alerts.CreateAlert(ctx, alert)
}

// Update validates and rewrites an existing alert owned by userID.
func (s *AlertService) Update(ctx context.Context, userID, alertID int64, in AlertInput) error {
	alert, err := s.toAlert(userID, in)
	if err != nil {
		return err
	}
	alert.ID = alertID
	return s.alerts.UpdateAlert(ctx, alert)
}

// Delete removes an alert owned by userID.
func (s *AlertService) Delete(ctx context.Context, userID, alertID int64) error {
	return s.alerts.DeleteAlert(ctx, userID, alertID)
}

// List returns all alerts owned by userID.
func (s *AlertService) List(ctx context.Context, userID int64) ([]domain.Alert, error) {
	return s.alerts.ListAlertsByUser(ctx, userID)
}

// Notifications returns the firings recorded for userID's alerts.
func (s *AlertService) Notifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return s.notifications.ListNotificationsByUser(ctx, userID)
}
