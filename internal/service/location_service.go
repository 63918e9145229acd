package service

import (
	"context"

	"github.com/weatherwatch/backend/internal/domain"
)

// LocationService handles a user's saved locations.
type LocationService struct {
	locations domain.LocationRepository
}

// NewLocationService creates a new location service.
func NewLocationService(locations domain.LocationRepository) *LocationService {
	return &LocationService{locations: locations}
}

// Save bookmarks a location for userID. Saving the same location twice is
// rejected.
func (s *LocationService) Save(ctx context.Context, userID int64, location string) error {
	if location == "" {
		return domain.NewValidationError("location is required")
	}

	exists, err := s.locations.LocationExists(ctx, userID, location)
	if err != nil {
		return err
	}
	if exists {
		return domain.NewValidationError("location already saved")
	}
	return s.locations.SaveLocation(ctx, userID, location)
}

// Delete removes a bookmarked location.
func (s *LocationService) Delete(ctx context.Context, userID int64, location string) error {
	return s.locations.DeleteLocation(ctx, userID, location)
}

// List returns userID's bookmarked locations.
func (s *LocationService) List(ctx context.Context, userID int64) ([]string, error) {
	return s.locations.ListLocations(ctx, userID)
}
