package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "medifind/1.0"
	defaultHTTPTimeout  = 8 * time.Second
	maxErrorBody        = 512
)

// NominatimProvider implements providers.GeocodingProvider against a
// Nominatim-compatible HTTP API.
type NominatimProvider struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimProvider creates a provider for the public Nominatim service.
func NewNominatimProvider(userAgent string) providers.GeocodingProvider {
	return NewNominatimProviderWithOptions(defaultNominatimURL, userAgent, nil)
}

// NewNominatimProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewNominatimProviderWithOptions(baseURL, userAgent string, httpClient *http.Client) providers.GeocodingProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultNominatimURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &NominatimProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type searchResult struct {
	Latitude    float64 `json:"lat,string"`
	Longitude   float64 `json:"lon,string"`
	DisplayName string  `json:"display_name"`
}

type reverseResult struct {
	Error       string         `json:"error"`
	Latitude    string         `json:"lat"`
	Longitude   string         `json:"lon"`
	DisplayName string         `json:"display_name"`
	Address     reverseAddress `json:"address"`
}

type reverseAddress struct {
	StateDistrict string `json:"state_district"`
	County        string `json:"county"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Suburb        string `json:"suburb"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

// Forward resolves free text to the best matching coordinate.
func (p *NominatimProvider) Forward(ctx context.Context, query string) (*providers.Coordinates, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("location query is required")
	}

	ctx, span := observability.StartSpan(ctx, "geocoding.forward")
	defer span.End()
	span.SetAttributes(attribute.String("geocoding.query", trimmed))

	params := url.Values{
		"q":      []string{trimmed},
		"format": []string{"jsonv2"},
		"limit":  []string{"1"},
	}

	var results []searchResult
	if err := p.get(ctx, "/search", params, &results); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if len(results) == 0 {
		return nil, apperrors.NewLocationNotFoundError(fmt.Sprintf("no match for %q", trimmed))
	}

	return &providers.Coordinates{
		Latitude:  results[0].Latitude,
		Longitude: results[0].Longitude,
	}, nil
}

// Reverse resolves a coordinate to a display name and region hints.
func (p *NominatimProvider) Reverse(ctx context.Context, lat, lon float64) (*providers.GeocodedPlace, error) {
	ctx, span := observability.StartSpan(ctx, "geocoding.reverse")
	defer span.End()

	params := url.Values{
		"lat":    []string{strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    []string{strconv.FormatFloat(lon, 'f', 6, 64)},
		"format": []string{"jsonv2"},
	}

	var result reverseResult
	if err := p.get(ctx, "/reverse", params, &result); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if result.Error != "" || result.DisplayName == "" {
		return nil, apperrors.NewLocationNotFoundError("no place at coordinates")
	}

	place := &providers.GeocodedPlace{
		DisplayName: result.DisplayName,
		District:    firstNonEmpty(result.Address.StateDistrict, result.Address.County),
		City:        firstNonEmpty(result.Address.City, result.Address.Town, result.Address.Village),
		Suburb:      result.Address.Suburb,
		State:       result.Address.State,
		Country:     result.Address.Country,
		Coordinates: providers.Coordinates{Latitude: lat, Longitude: lon},
	}
	if v, err := strconv.ParseFloat(result.Latitude, 64); err == nil {
		place.Coordinates.Latitude = v
	}
	if v, err := strconv.ParseFloat(result.Longitude, 64); err == nil {
		place.Coordinates.Longitude = v
	}

	return place, nil
}

func (p *NominatimProvider) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := p.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to build geocoding request", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	logger := observability.LoggerFromContext(ctx)
	logger.Debug().Str("path", path).Str("query", params.Get("q")).Msg("Calling geocoding provider")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError("geocoding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Geocoding provider returned an error")
		return apperrors.NewExternalError(fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalError("failed to decode geocoding response", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
