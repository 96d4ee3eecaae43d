package services

import (
	"context"
	"strings"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const maxDoctorPageSize = 100

// DoctorService handles doctor browsing
type DoctorService struct {
	repo repositories.DoctorRepository
}

// NewDoctorService creates a new doctor service
func NewDoctorService(repo repositories.DoctorRepository) *DoctorService {
	return &DoctorService{repo: repo}
}

// GetByID retrieves an active doctor
func (s *DoctorService) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("doctor id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns active doctors, optionally scoped to a hospital or specialization
func (s *DoctorService) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	if filter.Limit <= 0 || filter.Limit > maxDoctorPageSize {
		filter.Limit = maxDoctorPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	return s.repo.List(ctx, filter)
}
