package entities

import (
	"fmt"
	"time"
)

// FacilityType is the kind of medical facility
type FacilityType string

const (
	FacilityTypeHospital   FacilityType = "hospital"
	FacilityTypePharmacy   FacilityType = "pharmacy"
	FacilityTypeLaboratory FacilityType = "laboratory"
	FacilityTypeDoctors    FacilityType = "doctors"
	FacilityTypeClinic     FacilityType = "clinic"
)

// AddressUnavailable is stored when the source carries no usable address
const AddressUnavailable = "Address unavailable"

// Facility represents a medical facility, either curated or discovered through POI search
type Facility struct {
	ID         string       `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Type       FacilityType `json:"type" db:"type"`
	Address    string       `json:"address" db:"address"`
	Location   *Location    `json:"location,omitempty" db:"-"`
	Phone      string       `json:"phone,omitempty" db:"phone"`
	Website    string       `json:"website,omitempty" db:"website"`
	Rating     *float64     `json:"rating,omitempty" db:"rating"`
	OpenNow    *bool        `json:"open_now,omitempty" db:"open_now"`
	District   string       `json:"district,omitempty" db:"district"`
	State      string       `json:"state,omitempty" db:"state"`
	ImageURL   string       `json:"image_url,omitempty" db:"image_url"`
	Services   []string     `json:"services,omitempty" db:"-"`
	DistanceKm *float64     `json:"distance_km,omitempty" db:"-"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// POIFacilityID builds the identifier for a facility discovered through OpenStreetMap.
// elementType is node, way or relation.
func POIFacilityID(elementType string, elementID int64) string {
	return fmt.Sprintf("osm:%s:%d", elementType, elementID)
}

// ParseFacilityType validates a stored or user supplied type
func ParseFacilityType(s string) (FacilityType, bool) {
	switch t := FacilityType(s); t {
	case FacilityTypeHospital, FacilityTypePharmacy, FacilityTypeLaboratory, FacilityTypeDoctors, FacilityTypeClinic:
		return t, true
	}
	return "", false
}
