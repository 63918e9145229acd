package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements domain.Repository on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL repository and bootstraps the schema.
func NewRepository(ctx context.Context, pool *pgxpool.Pool) (*Repository, error) {
	r := &Repository{pool: pool}
	if err := r.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("postgres: failed to initialize schema: %w", err)
	}
	return r, nil
}

func (r *Repository) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL DEFAULT '',
			hashed_password TEXT NOT NULL,
			disabled BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS saved_locations (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			location TEXT NOT NULL,
			UNIQUE (user_id, location)
		)`,

		`CREATE TABLE IF NOT EXISTS weather_alerts (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			location TEXT NOT NULL,
			column_name TEXT NOT NULL,
			comparator TEXT NOT NULL,
			number DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weather_alerts_location ON weather_alerts (location)`,

		`CREATE TABLE IF NOT EXISTS weather_notifications (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			location TEXT NOT NULL,
			column_name TEXT NOT NULL,
			comparator TEXT NOT NULL,
			number DOUBLE PRECISION NOT NULL,
			actual_number DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weather_notifications_user ON weather_notifications (user_id)`,

		`CREATE TABLE IF NOT EXISTS weather_history (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			location TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			main_weather TEXT NOT NULL,
			icon TEXT NOT NULL,
			description TEXT NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			feels_like DOUBLE PRECISION NOT NULL,
			temp_min DOUBLE PRECISION NOT NULL,
			temp_max DOUBLE PRECISION NOT NULL,
			pressure DOUBLE PRECISION NOT NULL,
			humidity DOUBLE PRECISION NOT NULL,
			visibility DOUBLE PRECISION NOT NULL,
			wind_speed DOUBLE PRECISION NOT NULL,
			wind_deg DOUBLE PRECISION NOT NULL,
			sunrise TIMESTAMPTZ NOT NULL,
			sunset TIMESTAMPTZ NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weather_history_location ON weather_history (location)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Health checks database connectivity.
func (r *Repository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
