package service

import (
	"github.com/weatherwatch/backend/internal/domain"
)

// Repository is re-exported from domain for convenience
type Repository = domain.Repository
