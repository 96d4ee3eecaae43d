package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medifind/internal/adapters/cache"
	"github.com/zatekoja/medifind/internal/adapters/database"
	"github.com/zatekoja/medifind/internal/adapters/events"
	"github.com/zatekoja/medifind/internal/adapters/identity"
	"github.com/zatekoja/medifind/internal/adapters/providers/geocoding"
	"github.com/zatekoja/medifind/internal/adapters/providers/poi"
	"github.com/zatekoja/medifind/internal/adapters/search"
	"github.com/zatekoja/medifind/internal/api/handlers"
	"github.com/zatekoja/medifind/internal/api/middleware"
	"github.com/zatekoja/medifind/internal/api/routes"
	"github.com/zatekoja/medifind/internal/application/services"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/redis"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	"github.com/zatekoja/medifind/pkg/config"
	"github.com/zatekoja/medifind/pkg/regions"
)

const (
	cacheKeyPrefix  = "medifind:"
	memoryCacheSize = 10000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	catalog, err := regions.Load(cfg.App.RegionsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load region catalog")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis backs sessions, the facility cache and queue events. Without it
	// the process falls back to in-memory equivalents, which only suit a
	// single instance.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
		memory, err := cache.NewMemoryAdapter(memoryCacheSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create memory cache")
		}
		cacheProvider = memory
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient, cacheKeyPrefix)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Redis client initialized")
	}

	// Medicine search is optional; the rest of the API works without Typesense.
	var medicineHandler *handlers.MedicineHandler
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable, medicine search disabled")
	} else {
		index := search.NewTypesenseAdapter(typesenseClient)
		if err := index.EnsureCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to ensure medicine collection")
		}
		medicineHandler = handlers.NewMedicineHandler(services.NewMedicineCatalogService(index))
		log.Info().Msg("Typesense client initialized")
	}

	facilityRepo := database.NewCachedFacilityAdapter(database.NewFacilityAdapter(pgClient), cacheProvider, metrics)
	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	doctorRepo := database.NewDoctorAdapter(pgClient)

	geocoder := geocoding.NewNominatimProviderWithOptions(
		cfg.Geocoding.BaseURL,
		cfg.Geocoding.UserAgent,
		&http.Client{Timeout: cfg.Geocoding.Timeout},
	)
	poiProvider := poi.NewOverpassProviderWithOptions(poi.Options{
		BaseURL:       cfg.POI.BaseURL,
		HTTPClient:    &http.Client{Timeout: cfg.POI.Timeout},
		MaxFailures:   cfg.POI.BreakerMaxFailures,
		OpenTimeout:   cfg.POI.BreakerOpenTimeout,
		HalfOpenCalls: cfg.POI.BreakerHalfOpenCalls,
	})

	resolver := services.NewFacilityResolver(geocoder, facilityRepo, poiProvider, catalog, services.FacilityResolverConfig{
		Country:        cfg.Geocoding.Country,
		RadiusMeters:   cfg.POI.RadiusMeters,
		Timeout:        cfg.Search.Timeout,
		DegradedLimit:  cfg.Search.DegradedLimit,
		PersistTimeout: cfg.Search.PersistTimeout,
	}, metrics)

	allocator, err := services.NewTokenAllocator(appointmentRepo, cfg.Booking)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid booking configuration")
	}
	bookingService := services.NewBookingService(appointmentRepo, doctorRepo, allocator, eventBus, cfg.Booking.MaxAllocationAttempts, metrics)
	doctorService := services.NewDoctorService(doctorRepo)
	if cfg.Session.IdentitySecret == "" {
		log.Warn().Msg("SESSION_IDENTITY_SECRET not set, sign-in is disabled")
	}
	verifier := identity.NewJWTVerifier(cfg.Session.IdentitySecret, cfg.Session.IdentityIssuer)
	sessionService := services.NewSessionService(cacheProvider, verifier, cfg.Session.TTL, cfg.Session.AdminUserIDs)

	router := routes.NewRouter(routes.Handlers{
		Facility:    handlers.NewFacilityHandler(resolver, facilityRepo),
		Appointment: handlers.NewAppointmentHandler(bookingService),
		Doctor:      handlers.NewDoctorHandler(doctorService, bookingService),
		Geolocation: handlers.NewGeolocationHandler(geocoder),
		Region:      handlers.NewRegionHandler(catalog),
		Session:     handlers.NewSessionHandler(sessionService),
		Medicine:    medicineHandler,
		SSE:         handlers.NewSSEHandler(eventBus),
	}, sessionService, middleware.ParseAllowedOrigins(cfg.App.AllowedOrigins), metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: queue streams stay open for as long as the client listens.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
