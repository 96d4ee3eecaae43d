package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Geocoding GeocodingConfig
	POI       POIConfig
	Search    SearchConfig
	Booking   BookingConfig
	Session   SessionConfig
	OTEL      OTELConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env            string
	RegionsFile    string
	AllowedOrigins string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// GeocodingConfig holds the forward/reverse geocoding provider settings
type GeocodingConfig struct {
	BaseURL   string
	UserAgent string
	Country   string
	Timeout   time.Duration
}

// POIConfig holds the point-of-interest search provider settings
type POIConfig struct {
	BaseURL              string
	RadiusMeters         int
	Timeout              time.Duration
	BreakerMaxFailures   int
	BreakerOpenTimeout   time.Duration
	BreakerHalfOpenCalls int
}

// SearchConfig holds facility resolver settings
type SearchConfig struct {
	Timeout        time.Duration
	DegradedLimit  int
	PersistTimeout time.Duration
}

// BookingConfig holds token allocation and payment settings
type BookingConfig struct {
	BaseTime              string
	SlotMinutes           int
	PartialRate           float64
	MaxAllocationAttempts int
}

// SessionConfig holds session lifetime and role settings
type SessionConfig struct {
	TTL          time.Duration
	AdminUserIDs []string
	// IdentitySecret verifies identity tokens; empty disables sign-in
	IdentitySecret string
	IdentityIssuer string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:            getEnv("APP_ENV", "development"),
			RegionsFile:    getEnv("REGIONS_FILE", ""),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "medifind"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Geocoding: GeocodingConfig{
			BaseURL:   getEnv("GEOCODING_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODING_USER_AGENT", "medifind/1.0"),
			Country:   getEnv("GEOCODING_COUNTRY", "India"),
			Timeout:   getEnvAsDuration("GEOCODING_TIMEOUT", 8*time.Second),
		},
		POI: POIConfig{
			BaseURL:              getEnv("POI_URL", "https://overpass-api.de/api/interpreter"),
			RadiusMeters:         getEnvAsInt("POI_RADIUS_METERS", 5000),
			Timeout:              getEnvAsDuration("POI_TIMEOUT", 8*time.Second),
			BreakerMaxFailures:   getEnvAsInt("POI_BREAKER_MAX_FAILURES", 5),
			BreakerOpenTimeout:   getEnvAsDuration("POI_BREAKER_OPEN_TIMEOUT", 30*time.Second),
			BreakerHalfOpenCalls: getEnvAsInt("POI_BREAKER_HALF_OPEN_CALLS", 1),
		},
		Search: SearchConfig{
			Timeout:        getEnvAsDuration("SEARCH_TIMEOUT", 10*time.Second),
			DegradedLimit:  getEnvAsInt("SEARCH_DEGRADED_LIMIT", 10),
			PersistTimeout: getEnvAsDuration("SEARCH_PERSIST_TIMEOUT", 3*time.Second),
		},
		Booking: BookingConfig{
			BaseTime:              getEnv("BOOKING_BASE_TIME", "10:00"),
			SlotMinutes:           getEnvAsInt("BOOKING_SLOT_MINUTES", 15),
			PartialRate:           getEnvAsFloat("BOOKING_PARTIAL_RATE", 0.10),
			MaxAllocationAttempts: getEnvAsInt("BOOKING_MAX_ALLOCATION_ATTEMPTS", 3),
		},
		Session: SessionConfig{
			TTL:            getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			AdminUserIDs:   getEnvAsList("ADMIN_USER_IDS"),
			IdentitySecret: getEnv("SESSION_IDENTITY_SECRET", ""),
			IdentityIssuer: getEnv("SESSION_IDENTITY_ISSUER", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medifind"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := time.Parse("15:04", c.Booking.BaseTime); err != nil {
		return fmt.Errorf("invalid BOOKING_BASE_TIME %q: expected HH:MM", c.Booking.BaseTime)
	}
	if c.Booking.SlotMinutes <= 0 {
		return fmt.Errorf("BOOKING_SLOT_MINUTES must be positive, got %d", c.Booking.SlotMinutes)
	}
	if c.Booking.PartialRate <= 0 || c.Booking.PartialRate > 1 {
		return fmt.Errorf("BOOKING_PARTIAL_RATE must be in (0, 1], got %v", c.Booking.PartialRate)
	}
	if c.Search.DegradedLimit <= 0 {
		return fmt.Errorf("SEARCH_DEGRADED_LIMIT must be positive, got %d", c.Search.DegradedLimit)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("10s") or plain milliseconds ("10000").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
