package service

import (
	"context"
	"log"

	"github.com/weatherwatch/backend/internal/cache"
	"github.com/weatherwatch/backend/internal/domain"
	"github.com/weatherwatch/backend/internal/metrics"
)

// Fetcher retrieves a normalized reading from the upstream provider.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (domain.Reading, error)
}

// Enqueuer hands fresh readings to the alert evaluation worker.
type Enqueuer interface {
	Enqueue(r domain.Reading)
}

// WeatherService is the ingestion path: serve from the freshness cache
// when possible, otherwise fetch, record, and hand the fresh reading to
// the worker. The caller never waits on alert evaluation.
type WeatherService struct {
	cache   *cache.Cache
	fetcher Fetcher
	history domain.HistoryRepository
	worker  Enqueuer
}

// NewWeatherService creates a new weather service.
func NewWeatherService(c *cache.Cache, fetcher Fetcher, history domain.HistoryRepository, worker Enqueuer) *WeatherService {
	return &WeatherService{
		cache:   c,
		fetcher: fetcher,
		history: history,
		worker:  worker,
	}
}

// GetWeather returns the current reading for location, fetching from the
// provider only when the cached reading is absent or stale. On a miss the
// fresh reading is appended to history, written to the cache, and enqueued
// for alert evaluation, in that order; a provider or history failure
// surfaces to the caller and leaves the cache and queue untouched.
func (s *WeatherService) GetWeather(ctx context.Context, location string) (domain.Reading, error) {
	if r, ok := s.cache.Get(location); ok {
		metrics.RecordCacheLookup(true)
		return r, nil
	}
	metrics.RecordCacheLookup(false)

	var (
		reading domain.Reading
		err     error
	)
	// Per-location lock over check-fetch-store: a concurrent request that
	// lost the race re-reads the fresh entry instead of fetching again.
	s.cache.WithLock(location, func() {
		if r, ok := s.cache.Get(location); ok {
			reading = r
			return
		}

		reading, err = s.fetcher.Fetch(ctx, location)
		if err != nil {
			return
		}

		if herr := s.history.AppendReading(ctx, reading); herr != nil {
			log.Printf("weather: failed to append history for %q: %v", location, herr)
			err = herr
			return
		}

		s.cache.Put(location, reading)
		metrics.CacheEntries.Set(float64(s.cache.Len()))

		// Enqueue strictly after the cache write, so the worker only ever
		// evaluates readings the cache has seen.
		s.worker.Enqueue(reading)
	})
	if err != nil {
		return domain.Reading{}, err
	}
	return reading, nil
}

// GetHistory returns every logged reading for location in capture order.
// Locations never fetched yield an empty history, not an error.
func (s *WeatherService) GetHistory(ctx context.Context, location string) ([]domain.Reading, error) {
	return s.history.ListReadingsByLocation(ctx, location)
}
