package repositories

import (
	"context"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/pkg/geo"
)

// FacilityRepository defines the interface for facility data operations
type FacilityRepository interface {
	// GetByID retrieves a facility by ID
	GetByID(ctx context.Context, id string) (*entities.Facility, error)

	// Find returns stored facilities matching the query
	Find(ctx context.Context, query FacilityQuery) ([]*entities.Facility, error)

	// UpsertMany inserts facilities or refreshes existing rows with the same ID
	UpsertMany(ctx context.Context, facilities []*entities.Facility) error
}

// FacilityQuery defines filters for the local facility lookup. Only one
// region filter applies: District if set, else State, else Bounds. District
// and State are case-insensitive substring matches.
type FacilityQuery struct {
	Types    []entities.FacilityType
	District string
	State    string
	Bounds   *geo.BoundingBox
	Limit    int
}
