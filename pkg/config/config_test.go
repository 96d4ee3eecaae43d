package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoding.BaseURL)
	assert.Equal(t, "India", cfg.Geocoding.Country)
	assert.Equal(t, "10:00", cfg.Booking.BaseTime)
	assert.Equal(t, 15, cfg.Booking.SlotMinutes)
	assert.InDelta(t, 0.10, cfg.Booking.PartialRate, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 10, cfg.Search.DegradedLimit)
}

func TestLoad_BookingOverrides(t *testing.T) {
	t.Setenv("BOOKING_SLOT_MINUTES", "5")
	t.Setenv("BOOKING_BASE_TIME", "09:30")
	t.Setenv("SEARCH_TIMEOUT", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Booking.SlotMinutes)
	assert.Equal(t, "09:30", cfg.Booking.BaseTime)
	assert.Equal(t, 2500*time.Millisecond, cfg.Search.Timeout)
}

func TestLoad_RejectsInvalidBaseTime(t *testing.T) {
	t.Setenv("BOOKING_BASE_TIME", "ten o'clock")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsOutOfRangePartialRate(t *testing.T) {
	t.Setenv("BOOKING_PARTIAL_RATE", "1.5")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "medifind", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=medifind sslmode=disable", cfg.DatabaseDSN())
}

func TestLoad_AdminUserIDs(t *testing.T) {
	t.Setenv("ADMIN_USER_IDS", " admin-1, ,admin-2 ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"admin-1", "admin-2"}, cfg.Session.AdminUserIDs)
}

func TestLoad_IdentityVerification(t *testing.T) {
	t.Setenv("SESSION_IDENTITY_SECRET", "shh")
	t.Setenv("SESSION_IDENTITY_ISSUER", "https://id.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shh", cfg.Session.IdentitySecret)
	assert.Equal(t, "https://id.example", cfg.Session.IdentityIssuer)
}
