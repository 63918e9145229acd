package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/weatherwatch/backend/internal/cache"
	"github.com/weatherwatch/backend/internal/metrics"
)

// Scheduler periodically prunes stale entries from the freshness cache so
// locations that stop being requested do not pin memory forever.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     *cache.Cache
	interval  time.Duration
}

// New creates a new Scheduler.
func New(c *cache.Cache, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     c,
		interval:  interval,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		removed := s.cache.Prune()
		metrics.CacheEntries.Set(float64(s.cache.Len()))
		if removed > 0 {
			log.Printf("scheduler: pruned %d stale cache entries", removed)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future sweeps.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
