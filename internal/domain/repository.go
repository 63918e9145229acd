package domain

import "context"

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// LocationRepository persists a user's saved locations.
type LocationRepository interface {
	SaveLocation(ctx context.Context, userID int64, location string) error
	DeleteLocation(ctx context.Context, userID int64, location string) error
	ListLocations(ctx context.Context, userID int64) ([]string, error)
	LocationExists(ctx context.Context, userID int64, location string) (bool, error)
}

// AlertRepository persists threshold alerts. The worker reads by location;
// request handlers read and mutate by owning user.
type AlertRepository interface {
	CreateAlert(ctx context.Context, a Alert) (Alert, error)
	UpdateAlert(ctx context.Context, a Alert) error
	DeleteAlert(ctx context.Context, userID, alertID int64) error
	ListAlertsByUser(ctx context.Context, userID int64) ([]Alert, error)
	ListAlertsByLocation(ctx context.Context, location string) ([]Alert, error)
}

// NotificationRepository persists alert firings. InsertNotifications must
// commit all records for one reading as a single unit.
type NotificationRepository interface {
	InsertNotifications(ctx context.Context, ns []Notification) error
	ListNotificationsByUser(ctx context.Context, userID int64) ([]Notification, error)
}

// HistoryRepository is the append-only reading log backing /history. Every
// successful fetch is appended; entries are never updated or deleted.
type HistoryRepository interface {
	AppendReading(ctx context.Context, r Reading) error
	ListReadingsByLocation(ctx context.Context, location string) ([]Reading, error)
}

// Repository aggregates all persistence concerns behind one seam.
// The domain defines the interface; internal/repository provides the
// Postgres and in-memory implementations.
type Repository interface {
	UserRepository
	LocationRepository
	AlertRepository
	NotificationRepository
	HistoryRepository

	// Health checks storage connectivity.
	Health(ctx context.Context) error
}
