package postgres

import (
	"context"
	"sync"

	"github.com/weatherwatch/backend/internal/domain"
)

// MemoryRepository implements domain.Repository in process memory. It backs
// tests and the degraded no-database mode; behavior matches the Postgres
// implementation, including ownership scoping and not-found semantics.
type MemoryRepository struct {
	mu            sync.RWMutex
	nextID        int64
	users         []domain.User
	locations     []domain.SavedLocation
	alerts        []domain.Alert
	notifications []domain.Notification
	history       map[string][]domain.Reading
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{history: make(map[string][]domain.Reading)}
}

func (m *MemoryRepository) id() int64 {
	m.nextID++
	return m.nextID
}

// CreateUser inserts a new account.
func (m *MemoryRepository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.ID = m.id()
	m.users = append(m.users, u)
	return u, nil
}

// GetUserByUsername looks an account up by username.
func (m *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// GetUserByEmail looks an account up by email.
func (m *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// SaveLocation stores a bookmarked location.
func (m *MemoryRepository) SaveLocation(ctx context.Context, userID int64, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.locations = append(m.locations, domain.SavedLocation{
		ID:       m.id(),
		UserID:   userID,
		Location: location,
	})
	return nil
}

// DeleteLocation removes a bookmarked location.
func (m *MemoryRepository) DeleteLocation(ctx context.Context, userID int64, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, l := range m.locations {
		if l.UserID == userID && l.Location == location {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListLocations returns a user's bookmarked locations.
func (m *MemoryRepository) ListLocations(ctx context.Context, userID int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, l := range m.locations {
		if l.UserID == userID {
			out = append(out, l.Location)
		}
	}
	return out, nil
}

// LocationExists reports whether the user already bookmarked location.
func (m *MemoryRepository) LocationExists(ctx context.Context, userID int64, location string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.locations {
		if l.UserID == userID && l.Location == location {
			return true, nil
		}
	}
	return false, nil
}

// CreateAlert inserts a threshold alert.
func (m *MemoryRepository) CreateAlert(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.ID = m.id()
	m.alerts = append(m.alerts, a)
	return a, nil
}

// UpdateAlert rewrites an alert owned by a.UserID.
func (m *MemoryRepository) UpdateAlert(ctx context.Context, a domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, stored := range m.alerts {
		if stored.ID == a.ID && stored.UserID == a.UserID {
			m.alerts[i] = a
			return nil
		}
	}
	return domain.ErrNotFound
}

// DeleteAlert removes an alert owned by userID.
func (m *MemoryRepository) DeleteAlert(ctx context.Context, userID, alertID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.alerts {
		if a.ID == alertID && a.UserID == userID {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListAlertsByUser returns all alerts owned by userID.
func (m *MemoryRepository) ListAlertsByUser(ctx context.Context, userID int64) ([]domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Alert
	for _, a := range m.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListAlertsByLocation returns all alerts stored for a normalized location.
func (m *MemoryRepository) ListAlertsByLocation(ctx context.Context, location string) ([]domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Alert
	for _, a := range m.alerts {
		if a.Location == location {
			out = append(out, a)
		}
	}
	return out, nil
}

// InsertNotifications appends all firings for one reading atomically.
func (m *MemoryRepository) InsertNotifications(ctx context.Context, ns []domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range ns {
		n.ID = m.id()
		m.notifications = append(m.notifications, n)
	}
	return nil
}

// ListNotificationsByUser returns a user's recorded alert firings.
func (m *MemoryRepository) ListNotificationsByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

// AppendReading adds a reading to the append-only history log.
func (m *MemoryRepository) AppendReading(ctx context.Context, r domain.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.NormalizeLocation(r.Location)
	m.history[key] = append(m.history[key], r)
	return nil
}

// ListReadingsByLocation returns all logged readings in capture order.
func (m *MemoryRepository) ListReadingsByLocation(ctx context.Context, location string) ([]domain.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := domain.NormalizeLocation(location)
	out := make([]domain.Reading, len(m.history[key]))
	copy(out, m.history[key])
	return out, nil
}

// Health always succeeds in memory mode.
func (m *MemoryRepository) Health(ctx context.Context) error {
	return nil
}
