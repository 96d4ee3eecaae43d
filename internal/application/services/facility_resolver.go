package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
	"github.com/zatekoja/medifind/pkg/geo"
	"github.com/zatekoja/medifind/pkg/regions"
	"go.opentelemetry.io/otel/attribute"
)

// FacilityResolverConfig holds resolver tunables
type FacilityResolverConfig struct {
	Country       string
	RadiusMeters  int
	Timeout       time.Duration
	DegradedLimit int
	// PersistTimeout bounds the write-back, which outlives the search deadline
	PersistTimeout time.Duration
}

// FacilityResolver finds facilities for a search by consulting the local
// store first and falling back to live POI search, persisting what it finds.
type FacilityResolver struct {
	geocoder providers.GeocodingProvider
	store    repositories.FacilityRepository
	poi      providers.POIProvider
	catalog  *regions.Catalog
	cfg      FacilityResolverConfig
	tracker  *searchTracker
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewFacilityResolver creates a new facility resolver
func NewFacilityResolver(
	geocoder providers.GeocodingProvider,
	store repositories.FacilityRepository,
	poi providers.POIProvider,
	catalog *regions.Catalog,
	cfg FacilityResolverConfig,
	metrics *observability.Metrics,
) *FacilityResolver {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 5000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DegradedLimit <= 0 {
		cfg.DegradedLimit = 10
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 3 * time.Second
	}
	return &FacilityResolver{
		geocoder: geocoder,
		store:    store,
		poi:      poi,
		catalog:  catalog,
		cfg:      cfg,
		tracker:  newSearchTracker(),
		metrics:  metrics,
		now:      time.Now,
	}
}

// searchArea is where a search is centred and which region it is scoped to
type searchArea struct {
	center   providers.Coordinates
	district string
	state    string
	// explicit is set when the caller picked the district themselves
	explicit bool
}

// Resolve runs one facility search
func (r *FacilityResolver) Resolve(ctx context.Context, req entities.FacilitySearchRequest) (*entities.FacilitySearchResult, error) {
	types, ok := req.Category.FacilityTypes()
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown facility category %q", req.Category))
	}
	if strings.TrimSpace(req.District) != "" && strings.TrimSpace(req.State) == "" {
		return nil, apperrors.NewValidationError("state is required when a district is selected")
	}

	ctx, release := r.tracker.begin(ctx, req.ClientKey)
	defer release()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "facility.resolve")
	defer span.End()

	result, err := r.resolve(ctx, req, types)
	if err != nil {
		if ctxErr := r.contextError(ctx); ctxErr != nil {
			err = ctxErr
		}
		observability.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("search.source", string(result.Source)),
		attribute.Int("search.results", len(result.Facilities)),
	)
	observability.RecordFacilitySearch(ctx, r.metrics, string(result.Source))
	return result, nil
}

func (r *FacilityResolver) contextError(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	if errors.Is(context.Cause(ctx), errSearchSuperseded) {
		return apperrors.NewCancelledError("search superseded by a newer request", ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("facility search timed out", ctx.Err())
	}
	return apperrors.NewCancelledError("facility search cancelled", ctx.Err())
}

func (r *FacilityResolver) resolve(ctx context.Context, req entities.FacilitySearchRequest, types []entities.FacilityType) (*entities.FacilitySearchResult, error) {
	logger := observability.LoggerFromContext(ctx)

	area, err := r.locate(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &entities.FacilitySearchResult{
		Center:   entities.Location{Latitude: area.center.Latitude, Longitude: area.center.Longitude},
		District: area.district,
		State:    area.state,
	}

	stored, err := r.store.Find(ctx, r.storeQuery(area, types))
	if err != nil {
		return nil, err
	}

	if len(stored) > 0 {
		withDistances(stored, area.center)
		if area.explicit {
			stored = inDistrict(stored, area.district)
		}
		sortByDistance(stored)
		result.Facilities = stored
		result.Source = entities.SearchSourceStore
		return finish(result), nil
	}

	records := r.searchLive(ctx, area, types)
	// Provider errors are swallowed, so an expired search looks like an
	// empty one unless checked here.
	if err := r.contextError(ctx); err != nil {
		return nil, err
	}
	raw := shapeFacilities(records, area.center, r.now())
	sortByDistance(raw)

	result.Source = entities.SearchSourceLive
	result.Facilities = raw
	if area.explicit {
		filtered := inDistrict(raw, area.district)
		if len(filtered) == 0 && len(raw) > 0 {
			limit := r.cfg.DegradedLimit
			if len(raw) < limit {
				limit = len(raw)
			}
			result.Facilities = raw[:limit]
			result.Source = entities.SearchSourceDegraded
		} else {
			result.Facilities = filtered
		}
	}

	if len(raw) > 0 {
		r.persist(ctx, raw, area)
	}

	logger.Debug().
		Str("source", string(result.Source)).
		Int("raw", len(raw)).
		Int("returned", len(result.Facilities)).
		Msg("Live facility search completed")

	return finish(result), nil
}

// locate resolves the search coordinate and region
func (r *FacilityResolver) locate(ctx context.Context, req entities.FacilitySearchRequest) (*searchArea, error) {
	switch {
	case strings.TrimSpace(req.State) != "":
		state, district := req.State, req.District
		if r.catalog != nil {
			state, district = r.catalog.Canonical(req.State, req.District)
		}
		query := strings.Join(nonEmpty(strings.TrimSpace(district), state, r.cfg.Country), ", ")
		coords, err := r.geocoder.Forward(ctx, query)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeLocationNotFound) {
				return nil, apperrors.NewLocationNotFoundError("could not resolve location")
			}
			return nil, err
		}
		return &searchArea{center: *coords, district: district, state: state, explicit: district != ""}, nil

	case strings.TrimSpace(req.Query) != "":
		coords, err := r.geocoder.Forward(ctx, req.Query)
		if err != nil {
			return nil, err
		}
		area := &searchArea{center: *coords}
		r.inferRegion(ctx, area)
		return area, nil

	case req.HasDeviceLocation():
		area := &searchArea{center: providers.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}}
		r.inferRegion(ctx, area)
		return area, nil

	default:
		return nil, apperrors.NewMissingSearchLocationError()
	}
}

// inferRegion reverse geocodes the centre and matches it against the region
// catalog. Failures leave the area without a region.
func (r *FacilityResolver) inferRegion(ctx context.Context, area *searchArea) {
	place, err := r.geocoder.Reverse(ctx, area.center.Latitude, area.center.Longitude)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("Reverse geocoding failed, searching by radius")
		return
	}

	if r.catalog != nil {
		if match, ok := r.catalog.MatchHints(place.State, place.RegionHints()...); ok {
			area.district = match.District
			area.state = match.State
			return
		}
	}
	area.state = place.State
}

func (r *FacilityResolver) storeQuery(area *searchArea, types []entities.FacilityType) repositories.FacilityQuery {
	query := repositories.FacilityQuery{
		Types:    types,
		District: area.district,
		State:    area.state,
	}
	if area.district == "" && area.state == "" {
		box := geo.BoundingBoxAround(area.center.Latitude, area.center.Longitude, float64(r.cfg.RadiusMeters)/1000)
		query.Bounds = &box
	}
	return query
}

// searchLive queries the POI provider. Errors are logged and count as no
// results so a flaky provider degrades to an empty answer.
func (r *FacilityResolver) searchLive(ctx context.Context, area *searchArea, types []entities.FacilityType) []providers.POIRecord {
	logger := observability.LoggerFromContext(ctx)

	if area.explicit {
		records, err := r.poi.SearchInArea(ctx, area.district, types)
		if err != nil {
			logger.Warn().Err(err).Str("district", area.district).Msg("Area POI search failed")
		}
		if len(records) > 0 || ctx.Err() != nil {
			return records
		}
	}

	records, err := r.poi.SearchAround(ctx, area.center, r.cfg.RadiusMeters, types)
	if err != nil {
		logger.Warn().Err(err).Int("radius_m", r.cfg.RadiusMeters).Msg("Radius POI search failed")
		return nil
	}
	return records
}

// persist writes live results back to the store tagged with the resolved
// region so later searches are served locally. It runs detached from the
// search deadline; the results are returned whatever happens here.
func (r *FacilityResolver) persist(ctx context.Context, facilities []*entities.Facility, area *searchArea) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.PersistTimeout)
	defer cancel()

	tagged := make([]*entities.Facility, 0, len(facilities))
	for _, f := range facilities {
		c := *f
		c.DistanceKm = nil
		if area.district != "" {
			c.District = area.district
		}
		if area.state != "" {
			c.State = area.state
		}
		tagged = append(tagged, &c)
	}
	if err := r.store.UpsertMany(ctx, tagged); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Int("count", len(tagged)).Msg("Failed to persist live facilities")
	}
}

func finish(result *entities.FacilitySearchResult) *entities.FacilitySearchResult {
	if result.Facilities == nil {
		result.Facilities = []*entities.Facility{}
	}
	if len(result.Facilities) == 0 {
		result.Notice = entities.NoFacilitiesNotice
	}
	return result
}
