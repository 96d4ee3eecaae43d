package providers

import (
	"context"

	"github.com/zatekoja/medifind/internal/domain/entities"
)

// MedicineIndex is a full-text index over the medicine catalog
type MedicineIndex interface {
	// EnsureCollection creates the index if it does not exist
	EnsureCollection(ctx context.Context) error

	// Upsert indexes or replaces a batch of medicines
	Upsert(ctx context.Context, medicines []*entities.Medicine) error

	// Search returns medicines matching query, best match first
	Search(ctx context.Context, query string, limit int) ([]*entities.Medicine, error)
}
