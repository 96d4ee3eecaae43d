package poi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const sampleResponse = `{
  "elements": [
    {"type":"node","id":101,"lat":18.52,"lon":73.85,
     "tags":{"amenity":"hospital","name":"Ruby Hall Clinic","addr:street":"Sassoon Road","addr:city":"Pune","phone":"+91 20 6645 5100","opening_hours":"24/7"}},
    {"type":"way","id":202,"center":{"lat":18.53,"lon":73.86},
     "tags":{"healthcare":"laboratory","name":"Metro Diagnostics"}},
    {"type":"relation","id":303,
     "tags":{"amenity":"hospital","name":"No Geometry"}},
    {"type":"node","id":404,"lat":18.50,"lon":73.80,
     "tags":{"amenity":"school","name":"Not Medical"}}
  ]
}`

func TestOverpassProvider_SearchAround(t *testing.T) {
	t.Run("decodes elements into typed records", func(t *testing.T) {
		// Arrange
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			gotQuery = r.PostForm.Get("data")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleResponse))
		}))
		defer server.Close()

		provider := NewOverpassProviderWithOptions(Options{BaseURL: server.URL, HTTPClient: server.Client()})
		types := []entities.FacilityType{entities.FacilityTypeHospital, entities.FacilityTypeLaboratory}

		// Act
		records, err := provider.SearchAround(context.Background(), providers.Coordinates{Latitude: 18.52, Longitude: 73.85}, 5000, types)

		// Assert
		require.NoError(t, err)
		require.Len(t, records, 2)

		hospital := records[0]
		assert.Equal(t, "osm:node:101", hospital.ID())
		assert.Equal(t, entities.FacilityTypeHospital, hospital.Type)
		require.NotNil(t, hospital.Name)
		assert.Equal(t, "Ruby Hall Clinic", *hospital.Name)
		require.NotNil(t, hospital.OpeningHours)
		assert.Equal(t, "24/7", *hospital.OpeningHours)
		assert.Nil(t, hospital.Website)

		lab := records[1]
		assert.Equal(t, "osm:way:202", lab.ID())
		assert.Equal(t, entities.FacilityTypeLaboratory, lab.Type)
		assert.InDelta(t, 18.53, lab.Latitude, 1e-9)

		assert.Contains(t, gotQuery, `nwr["amenity"~"^(hospital|laboratory)$"](around:5000,18.520000,73.850000);`)
		assert.Contains(t, gotQuery, `nwr["healthcare"~"^(hospital|laboratory)$"]`)
		assert.True(t, strings.HasSuffix(gotQuery, "out center tags;"))
	})

	t.Run("non-2xx is a search provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGatewayTimeout)
		}))
		defer server.Close()

		provider := NewOverpassProviderWithOptions(Options{BaseURL: server.URL, HTTPClient: server.Client()})

		_, err := provider.SearchAround(context.Background(), providers.Coordinates{}, 1000, []entities.FacilityType{entities.FacilityTypeClinic})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSearchProvider))
	})

	t.Run("malformed body is a search provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>rate limited</html>`))
		}))
		defer server.Close()

		provider := NewOverpassProviderWithOptions(Options{BaseURL: server.URL, HTTPClient: server.Client()})

		_, err := provider.SearchAround(context.Background(), providers.Coordinates{}, 1000, []entities.FacilityType{entities.FacilityTypeClinic})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSearchProvider))
	})

	t.Run("open breaker short-circuits requests", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		provider := NewOverpassProviderWithOptions(Options{
			BaseURL:     server.URL,
			HTTPClient:  server.Client(),
			MaxFailures: 2,
			OpenTimeout: time.Minute,
		})
		types := []entities.FacilityType{entities.FacilityTypeHospital}

		for i := 0; i < 2; i++ {
			_, _ = provider.SearchAround(context.Background(), providers.Coordinates{}, 1000, types)
		}
		_, err := provider.SearchAround(context.Background(), providers.Coordinates{}, 1000, types)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSearchProvider))
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestOverpassProvider_CallerCancellation(t *testing.T) {
	t.Run("abandoned searches do not open the breaker", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`{"elements":[]}`))
		}))
		defer server.Close()

		provider := NewOverpassProviderWithOptions(Options{
			BaseURL:     server.URL,
			HTTPClient:  server.Client(),
			MaxFailures: 2,
			OpenTimeout: time.Minute,
		})
		types := []entities.FacilityType{entities.FacilityTypeHospital}

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		for i := 0; i < 5; i++ {
			_, err := provider.SearchAround(cancelled, providers.Coordinates{}, 1000, types)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCancelled), "got %v", err)
		}

		records, err := provider.SearchAround(context.Background(), providers.Coordinates{}, 1000, types)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestOverpassProvider_SearchInArea(t *testing.T) {
	t.Run("builds an administrative area query", func(t *testing.T) {
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			gotQuery = r.PostForm.Get("data")
			_, _ = w.Write([]byte(`{"elements":[]}`))
		}))
		defer server.Close()

		provider := NewOverpassProviderWithOptions(Options{BaseURL: server.URL, HTTPClient: server.Client()})

		records, err := provider.SearchInArea(context.Background(), `Pune "East"`, []entities.FacilityType{entities.FacilityTypePharmacy})

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Contains(t, gotQuery, `area["name"="Pune \"East\""]["boundary"="administrative"]->.searchArea;`)
		assert.Contains(t, gotQuery, `nwr["amenity"~"^(pharmacy)$"](area.searchArea);`)
	})

	t.Run("blank area is rejected", func(t *testing.T) {
		provider := NewOverpassProviderWithOptions(Options{BaseURL: "http://127.0.0.1:0"})

		_, err := provider.SearchInArea(context.Background(), " ", []entities.FacilityType{entities.FacilityTypePharmacy})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
