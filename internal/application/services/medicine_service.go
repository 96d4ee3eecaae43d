package services

import (
	"context"
	"strings"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

// MedicineCatalogService searches and loads the medicine catalog
type MedicineCatalogService struct {
	index providers.MedicineIndex
}

// NewMedicineCatalogService creates a new medicine catalog service
func NewMedicineCatalogService(index providers.MedicineIndex) *MedicineCatalogService {
	return &MedicineCatalogService{index: index}
}

// Search returns catalog entries matching query
func (s *MedicineCatalogService) Search(ctx context.Context, query string, limit int) ([]*entities.Medicine, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, apperrors.NewValidationError("query must be at least 2 characters")
	}
	return s.index.Search(ctx, query, limit)
}

// Load ensures the index exists and upserts the catalog in batches
func (s *MedicineCatalogService) Load(ctx context.Context, medicines []*entities.Medicine, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	if err := s.index.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	loaded := 0
	for start := 0; start < len(medicines); start += batchSize {
		end := start + batchSize
		if end > len(medicines) {
			end = len(medicines)
		}
		if err := s.index.Upsert(ctx, medicines[start:end]); err != nil {
			return loaded, err
		}
		loaded = end
	}
	return loaded, nil
}
