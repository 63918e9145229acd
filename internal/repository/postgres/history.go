package postgres

import (
	"context"
	"fmt"

	"github.com/weatherwatch/backend/internal/domain"
)

// AppendReading adds a reading to the append-only history log. The row is
// keyed by normalized location so history reads line up with cache keys.
func (r *Repository) AppendReading(ctx context.Context, reading domain.Reading) error {
	query := `
		INSERT INTO weather_history (
			location, lat, lon, main_weather, icon, description,
			temperature, feels_like, temp_min, temp_max, pressure, humidity,
			visibility, wind_speed, wind_deg, sunrise, sunset, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.pool.Exec(ctx, query,
		domain.NormalizeLocation(reading.Location), reading.Lat, reading.Lon,
		reading.MainWeather, reading.Icon, reading.Description,
		reading.Temperature, reading.FeelsLike, reading.TempMin, reading.TempMax,
		reading.Pressure, reading.Humidity, reading.Visibility,
		reading.WindSpeed, reading.WindDeg, reading.Sunrise, reading.Sunset, reading.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to append reading: %w", err)
	}
	return nil
}

// ListReadingsByLocation returns all logged readings for a location in
// capture order.
func (r *Repository) ListReadingsByLocation(ctx context.Context, location string) ([]domain.Reading, error) {
	query := `
		SELECT location, lat, lon, main_weather, icon, description,
			   temperature, feels_like, temp_min, temp_max, pressure, humidity,
			   visibility, wind_speed, wind_deg, sunrise, sunset, timestamp
		FROM weather_history
		WHERE location = $1
		ORDER BY timestamp, id
	`

	rows, err := r.pool.Query(ctx, query, domain.NormalizeLocation(location))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query history: %w", err)
	}
	defer rows.Close()

	var readings []domain.Reading
	for rows.Next() {
		var rd domain.Reading
		err := rows.Scan(
			&rd.Location, &rd.Lat, &rd.Lon, &rd.MainWeather, &rd.Icon, &rd.Description,
			&rd.Temperature, &rd.FeelsLike, &rd.TempMin, &rd.TempMax, &rd.Pressure, &rd.Humidity,
			&rd.Visibility, &rd.WindSpeed, &rd.WindDeg, &rd.Sunrise, &rd.Sunset, &rd.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan history row: %w", err)
		}
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}
