// Package provider implements the upstream weather fetcher against the
// OpenWeatherMap current-weather API.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherwatch/backend/internal/domain"
	"github.com/weatherwatch/backend/internal/metrics"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherClient fetches normalized readings from OpenWeatherMap.
// Calls are bounded by the HTTP client timeout and guarded by a circuit
// breaker so a struggling upstream fails fast instead of piling up
// in-flight requests.
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient creates a client with a 10 second call timeout.
func NewOpenWeatherClient(apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "openweather",
			Timeout: 30 * time.Second,
		}),
	}
}

// WithBaseURL points the client at a different endpoint. Used by tests to
// substitute a local fake upstream.
func (c *OpenWeatherClient) WithBaseURL(base string) *OpenWeatherClient {
	c.baseURL = base
	return c
}

// openWeatherResponse mirrors the OpenWeatherMap payload.
type openWeatherResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

// Fetch retrieves the current reading for location. Network errors,
// timeouts, non-success statuses, malformed payloads, and an open breaker
// all surface as *domain.UpstreamError. Fetch has no side effects beyond
// the network call; the caller orchestrates cache, history, and queue.
func (c *OpenWeatherClient) Fetch(ctx context.Context, location string) (domain.Reading, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, location)
	})
	metrics.RecordFetch(time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("circuit breaker open: %w", err)
		}
		return domain.Reading{}, &domain.UpstreamError{Location: location, Err: err}
	}
	return result.(domain.Reading), nil
}

func (c *OpenWeatherClient) fetch(ctx context.Context, location string) (domain.Reading, error) {
	reqURL := fmt.Sprintf("%s?q=%s&appid=%s&units=metric",
		c.baseURL, url.QueryEscape(location), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Reading{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Reading{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return domain.Reading{}, fmt.Errorf("payload missing weather conditions")
	}

	return domain.Reading{
		Location:    location,
		Lat:         payload.Coord.Lat,
		Lon:         payload.Coord.Lon,
		MainWeather: payload.Weather[0].Main,
		Icon:        payload.Weather[0].Icon,
		Description: payload.Weather[0].Description,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		TempMin:     payload.Main.TempMin,
		TempMax:     payload.Main.TempMax,
		Pressure:    payload.Main.Pressure,
		Humidity:    payload.Main.Humidity,
		Visibility:  payload.Visibility,
		WindSpeed:   payload.Wind.Speed,
		WindDeg:     payload.Wind.Deg,
		Sunrise:     time.Unix(payload.Sys.Sunrise, 0).UTC(),
		Sunset:      time.Unix(payload.Sys.Sunset, 0).UTC(),
		Timestamp:   time.Now().UTC(),
	}, nil
}
