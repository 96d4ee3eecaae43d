package services

import (
	"sort"
	"strings"
	"time"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/pkg/geo"
)

// openAllDay is the only opening_hours value treated as "open now" without
// evaluating the full opening-hours grammar.
const openAllDay = "24/7"

// shapeFacilities turns POI records into facilities measured from center.
// Rating is left unknown; the provider never supplies one.
func shapeFacilities(records []providers.POIRecord, center providers.Coordinates, now time.Time) []*entities.Facility {
	facilities := make([]*entities.Facility, 0, len(records))
	for _, r := range records {
		distance := geo.DistanceKm(center.Latitude, center.Longitude, r.Latitude, r.Longitude)
		f := &entities.Facility{
			ID:         r.ID(),
			Name:       deref(r.Name),
			Type:       r.Type,
			Address:    formatAddress(r),
			Location:   &entities.Location{Latitude: r.Latitude, Longitude: r.Longitude},
			Phone:      deref(r.Phone),
			Website:    deref(r.Website),
			District:   deref(r.District),
			State:      deref(r.State),
			ImageURL:   deref(r.Image),
			Services:   splitSpecialities(r.Speciality),
			DistanceKm: &distance,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if f.Name == "" {
			f.Name = "Unnamed " + string(r.Type)
		}
		if r.OpeningHours != nil && strings.EqualFold(*r.OpeningHours, openAllDay) {
			open := true
			f.OpenNow = &open
		}
		facilities = append(facilities, f)
	}
	return facilities
}

func formatAddress(r providers.POIRecord) string {
	if full := deref(r.FullAddress); full != "" {
		return full
	}

	street := strings.TrimSpace(strings.Join(nonEmpty(deref(r.HouseNumber), deref(r.Street)), " "))
	parts := nonEmpty(street, deref(r.City), deref(r.District), deref(r.Postcode))
	if len(parts) == 0 {
		return entities.AddressUnavailable
	}
	return strings.Join(parts, ", ")
}

func splitSpecialities(s *string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(*s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// withDistances fills DistanceKm for stored facilities that have coordinates
func withDistances(facilities []*entities.Facility, center providers.Coordinates) {
	for _, f := range facilities {
		if f.Location == nil {
			continue
		}
		d := geo.DistanceKm(center.Latitude, center.Longitude, f.Location.Latitude, f.Location.Longitude)
		f.DistanceKm = &d
	}
}

// sortByDistance orders facilities nearest first; unknown distances go last.
func sortByDistance(facilities []*entities.Facility) {
	sort.SliceStable(facilities, func(i, j int) bool {
		a, b := facilities[i].DistanceKm, facilities[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// inDistrict keeps facilities whose district or address mentions district
func inDistrict(facilities []*entities.Facility, district string) []*entities.Facility {
	needle := strings.ToLower(strings.TrimSpace(district))
	out := make([]*entities.Facility, 0, len(facilities))
	for _, f := range facilities {
		if strings.Contains(strings.ToLower(f.District), needle) || strings.Contains(strings.ToLower(f.Address), needle) {
			out = append(out, f)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
