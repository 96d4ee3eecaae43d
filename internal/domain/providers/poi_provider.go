package providers

import (
	"context"

	"github.com/zatekoja/medifind/internal/domain/entities"
)

// POIProvider searches an external points-of-interest service for medical facilities
type POIProvider interface {
	// SearchAround returns facilities of the given types within radiusMeters of center
	SearchAround(ctx context.Context, center Coordinates, radiusMeters int, types []entities.FacilityType) ([]POIRecord, error)

	// SearchInArea returns facilities of the given types inside a named administrative area
	SearchInArea(ctx context.Context, areaName string, types []entities.FacilityType) ([]POIRecord, error)
}

// POIRecord is one element returned by the POI provider. Optional tags are
// pointers so absent values stay distinguishable from empty ones. Records
// always carry a coordinate; elements without one are dropped by the adapter.
type POIRecord struct {
	ElementType  string
	ElementID    int64
	Latitude     float64
	Longitude    float64
	Type         entities.FacilityType
	Name         *string
	Street       *string
	HouseNumber  *string
	City         *string
	District     *string
	State        *string
	Postcode     *string
	FullAddress  *string
	Phone        *string
	Website      *string
	OpeningHours *string
	Healthcare   *string
	Speciality   *string
	Image        *string
}

// ID returns the stable facility identifier for the record
func (r POIRecord) ID() string {
	return entities.POIFacilityID(r.ElementType, r.ElementID)
}
