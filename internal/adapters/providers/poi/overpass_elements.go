package poi

import (
	"strings"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
)

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// coordinate returns the node position, or the computed center for ways
// and relations.
func (e overpassElement) coordinate() (lat, lon float64, ok bool) {
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

func (e overpassElement) tag(keys ...string) *string {
	for _, k := range keys {
		if v, ok := e.Tags[k]; ok && strings.TrimSpace(v) != "" {
			v = strings.TrimSpace(v)
			return &v
		}
	}
	return nil
}

// facilityType picks the first requested type named by the amenity or
// healthcare tag.
func (e overpassElement) facilityType(types []entities.FacilityType) (entities.FacilityType, bool) {
	for _, key := range []string{"amenity", "healthcare"} {
		value := strings.ToLower(e.Tags[key])
		for _, t := range types {
			if value == string(t) {
				return t, true
			}
		}
	}
	return "", false
}

func toRecords(elements []overpassElement, types []entities.FacilityType) []providers.POIRecord {
	records := make([]providers.POIRecord, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))

	for _, e := range elements {
		lat, lon, ok := e.coordinate()
		if !ok {
			continue
		}
		facilityType, ok := e.facilityType(types)
		if !ok {
			continue
		}

		record := providers.POIRecord{
			ElementType:  e.Type,
			ElementID:    e.ID,
			Latitude:     lat,
			Longitude:    lon,
			Type:         facilityType,
			Name:         e.tag("name", "name:en"),
			Street:       e.tag("addr:street"),
			HouseNumber:  e.tag("addr:housenumber"),
			City:         e.tag("addr:city"),
			District:     e.tag("addr:district"),
			State:        e.tag("addr:state"),
			Postcode:     e.tag("addr:postcode"),
			FullAddress:  e.tag("addr:full"),
			Phone:        e.tag("phone", "contact:phone"),
			Website:      e.tag("website", "contact:website"),
			OpeningHours: e.tag("opening_hours"),
			Healthcare:   e.tag("healthcare"),
			Speciality:   e.tag("healthcare:speciality"),
			Image:        e.tag("image"),
		}

		// Nodes matching both the amenity and healthcare clauses come back once
		// per clause.
		if _, dup := seen[record.ID()]; dup {
			continue
		}
		seen[record.ID()] = struct{}{}
		records = append(records, record)
	}
	return records
}
