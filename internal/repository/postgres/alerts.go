package postgres

import (
	"context"
	"fmt"

	"github.com/weatherwatch/backend/internal/domain"
)

// CreateAlert inserts a threshold alert and returns it with its assigned id.
func (r *Repository) CreateAlert(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	query := `
		INSERT INTO weather_alerts (user_id, location, column_name, comparator, number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		a.UserID, a.Location, string(a.Field), a.Comparator, a.Threshold,
	).Scan(&a.ID)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("postgres: failed to create alert: %w", err)
	}
	return a, nil
}

// UpdateAlert rewrites an alert owned by a.UserID.
func (r *Repository) UpdateAlert(ctx context.Context, a domain.Alert) error {
	query := `
		UPDATE weather_alerts
		SET location = $1, column_name = $2, comparator = $3, number = $4
		WHERE id = $5 AND user_id = $6
	`

	tag, err := r.pool.Exec(ctx, query,
		a.Location, string(a.Field), a.Comparator, a.Threshold, a.ID, a.UserID,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAlert removes an alert owned by userID.
func (r *Repository) DeleteAlert(ctx context.Context, userID, alertID int64) error {
	query := `DELETE FROM weather_alerts WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, alertID, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAlertsByUser returns all alerts owned by userID.
func (r *Repository) ListAlertsByUser(ctx context.Context, userID int64) ([]domain.Alert, error) {
	query := `
		SELECT id, user_id, location, column_name, comparator, number
		FROM weather_alerts
		WHERE user_id = $1
		ORDER BY id
	`
	return r.queryAlerts(ctx, query, userID)
}

// ListAlertsByLocation returns all alerts stored for a normalized location.
// Read by the worker for every dequeued reading.
func (r *Repository) ListAlertsByLocation(ctx context.Context, location string) ([]domain.Alert, error) {
	query := `
		SELECT id, user_id, location, column_name, comparator, number
		FROM weather_alerts
		WHERE location = $1
		ORDER BY id
	`
	return r.queryAlerts(ctx, query, location)
}

func (r *Repository) queryAlerts(ctx context.Context, query string, arg any) ([]domain.Alert, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var field string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Location, &field, &a.Comparator, &a.Threshold); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan alert row: %w", err)
		}
		a.Field = domain.AlertField(field)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// InsertNotifications persists all firings for one reading in a single
// transaction, so a partial batch is never visible.
func (r *Repository) InsertNotifications(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin notification batch: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO weather_notifications
			(user_id, location, column_name, comparator, number, actual_number, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, n := range ns {
		_, err := tx.Exec(ctx, query,
			n.UserID, n.Location, string(n.Field), n.Comparator, n.Threshold, n.ActualValue, n.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("postgres: failed to insert notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit notification batch: %w", err)
	}
	return nil
}

// ListNotificationsByUser returns a user's recorded alert firings.
func (r *Repository) ListNotificationsByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	query := `
		SELECT id, user_id, location, column_name, comparator, number, actual_number, timestamp
		FROM weather_notifications
		WHERE user_id = $1
		ORDER BY timestamp, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query notifications: %w", err)
	}
	defer rows.Close()

	var ns []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var field string
		err := rows.Scan(&n.ID, &n.UserID, &n.Location, &field, &n.Comparator,
			&n.Threshold, &n.ActualValue, &n.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan notification row: %w", err)
		}
		n.Field = domain.AlertField(field)
		ns = append(ns, n)
	}
	return ns, rows.Err()
}
