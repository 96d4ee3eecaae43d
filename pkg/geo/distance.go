package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox is an axis-aligned lat/lon rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundingBoxAround returns the box enclosing a circle of radiusKm around the
// point. It over-approximates the circle so callers should still filter by
// DistanceKm when exact containment matters.
func BoundingBoxAround(lat, lon, radiusKm float64) BoundingBox {
	latDelta := radiusKm / EarthRadiusKm * 180 / math.Pi
	cosLat := math.Cos(toRadians(lat))
	lonDelta := 180.0
	if cosLat > 1e-9 {
		lonDelta = math.Min(180, latDelta/cosLat)
	}
	return BoundingBox{
		MinLat: math.Max(-90, lat-latDelta),
		MaxLat: math.Min(90, lat+latDelta),
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
