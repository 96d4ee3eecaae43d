package providers

import (
	"context"
)

// GeocodingProvider defines the interface for forward and reverse geocoding
type GeocodingProvider interface {
	// Forward resolves free text to the best matching coordinate
	Forward(ctx context.Context, query string) (*Coordinates, error)

	// Reverse resolves a coordinate to a display name and region hints
	Reverse(ctx context.Context, lat, lon float64) (*GeocodedPlace, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// GeocodedPlace is the result of reverse geocoding
type GeocodedPlace struct {
	DisplayName string
	District    string
	City        string
	Suburb      string
	State       string
	Country     string
	Coordinates Coordinates
}

// RegionHints returns the administrative names most likely to match a
// district, most specific first.
func (p *GeocodedPlace) RegionHints() []string {
	hints := make([]string, 0, 3)
	for _, h := range []string{p.District, p.City, p.Suburb} {
		if h != "" {
			hints = append(hints, h)
		}
	}
	return hints
}
