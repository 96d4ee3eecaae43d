package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
)

// facilityByIDTTL is how long a single facility stays cached, in seconds
const facilityByIDTTL = 300

// CachedFacilityAdapter caches facility lookups by ID. Find always goes to
// the store so the resolver sees write-backs immediately.
type CachedFacilityAdapter struct {
	adapter repositories.FacilityRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedFacilityAdapter creates a new cached facility adapter
func NewCachedFacilityAdapter(adapter repositories.FacilityRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.FacilityRepository {
	return &CachedFacilityAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

func facilityCacheKey(id string) string {
	return fmt.Sprintf("facility:%s", id)
}

// GetByID retrieves a facility by ID with caching
func (a *CachedFacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	logger := observability.LoggerFromContext(ctx)
	cacheKey := facilityCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var facility entities.Facility
		if err := json.Unmarshal(cached, &facility); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "facility")
			return &facility, nil
		}
		logger.Warn().Err(err).Str("facility_id", id).Msg("Discarding undecodable cached facility")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "facility")

	facility, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(facility); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, facilityByIDTTL); err != nil {
			logger.Warn().Err(err).Str("facility_id", id).Msg("Failed to cache facility")
		}
	}

	return facility, nil
}

// Find delegates to the underlying store
func (a *CachedFacilityAdapter) Find(ctx context.Context, query repositories.FacilityQuery) ([]*entities.Facility, error) {
	return a.adapter.Find(ctx, query)
}

// UpsertMany writes through and invalidates cached copies of the written rows
func (a *CachedFacilityAdapter) UpsertMany(ctx context.Context, facilities []*entities.Facility) error {
	if err := a.adapter.UpsertMany(ctx, facilities); err != nil {
		return err
	}

	logger := observability.LoggerFromContext(ctx)
	for _, f := range facilities {
		if err := a.cache.Delete(ctx, facilityCacheKey(f.ID)); err != nil {
			logger.Warn().Err(err).Str("facility_id", f.ID).Msg("Failed to invalidate cached facility")
		}
	}
	return nil
}
