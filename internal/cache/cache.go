// Package cache holds the freshness cache for weather readings: a single
// slot per location that decides whether a previously fetched reading is
// still usable or must be refreshed.
package cache

import (
	"sync"
	"time"

	"github.com/weatherwatch/backend/internal/domain"
)

// Cache keeps at most one reading per normalized location key.
// Freshness is judged on the reading's own capture timestamp, not on a
// separate write time, so history reads and cache reads agree on age.
type Cache struct {
	mu      sync.RWMutex
	window  time.Duration
	entries map[string]domain.Reading

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// New creates a Cache with the given freshness window.
func New(window time.Duration) *Cache {
	return &Cache{
		window:  window,
		entries: make(map[string]domain.Reading),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get returns the cached reading for location if one exists and is still
// within the freshness window.
func (c *Cache) Get(location string) (domain.Reading, bool) {
	key := domain.NormalizeLocation(location)

	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.entries[key]
	if !ok || time.Since(r.Timestamp) >= c.window {
		return domain.Reading{}, false
	}
	return r, true
}

// Put overwrites the single slot for location. Last write wins.
func (c *Cache) Put(location string, r domain.Reading) {
	key := domain.NormalizeLocation(location)

	c.mu.Lock()
	c.entries[key] = r
	c.mu.Unlock()
}

// WithLock runs fn while holding the per-location lock, making the
// check-then-fetch-then-store sequence atomic per location. Two concurrent
// requests for the same location serialize here instead of both fetching.
func (c *Cache) WithLock(location string, fn func()) {
	key := domain.NormalizeLocation(location)

	c.lockMu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	c.lockMu.Unlock()

	l.Lock()
	defer l.Unlock()
	fn()
}

// Prune drops entries that have aged out of the freshness window and
// returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, r := range c.entries {
		if time.Since(r.Timestamp) >= c.window {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
