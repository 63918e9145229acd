package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/weatherwatch/backend/internal/domain"
)

// CreateUser inserts a new account and returns it with its assigned id.
func (r *Repository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	query := `
		INSERT INTO users (username, email, full_name, hashed_password, disabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		u.Username, u.Email, u.FullName, u.HashedPassword, u.Disabled,
	).Scan(&u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("postgres: failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByUsername looks an account up by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getUser(ctx, "username", username)
}

// GetUserByEmail looks an account up by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *Repository) getUser(ctx context.Context, column, value string) (domain.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, email, full_name, hashed_password, disabled
		FROM users
		WHERE %s = $1
	`, column)

	var u domain.User
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.HashedPassword, &u.Disabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("postgres: failed to query user: %w", err)
	}
	return u, nil
}

// SaveLocation stores a bookmarked location for a user.
func (r *Repository) SaveLocation(ctx context.Context, userID int64, location string) error {
	query := `INSERT INTO saved_locations (user_id, location) VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, userID, location); err != nil {
		return fmt.Errorf("postgres: failed to save location: %w", err)
	}
	return nil
}

// DeleteLocation removes a bookmarked location.
func (r *Repository) DeleteLocation(ctx context.Context, userID int64, location string) error {
	query := `DELETE FROM saved_locations WHERE user_id = $1 AND location = $2`

	tag, err := r.pool.Exec(ctx, query, userID, location)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListLocations returns a user's bookmarked locations.
func (r *Repository) ListLocations(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT location FROM saved_locations WHERE user_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan location row: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// LocationExists reports whether the user already bookmarked location.
func (r *Repository) LocationExists(ctx context.Context, userID int64, location string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM saved_locations WHERE user_id = $1 AND location = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, location).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check location: %w", err)
	}
	return exists, nil
}
