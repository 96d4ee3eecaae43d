package poi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultOverpassURL   = "https://overpass-api.de/api/interpreter"
	defaultHTTPTimeout   = 8 * time.Second
	defaultMaxFailures   = 5
	defaultOpenTimeout   = 30 * time.Second
	defaultHalfOpenCalls = 1
	queryTimeoutSeconds  = 25
	maxErrorBody         = 512
)

// Options configures the Overpass provider. Zero values fall back to defaults.
type Options struct {
	BaseURL       string
	HTTPClient    *http.Client
	MaxFailures   int
	OpenTimeout   time.Duration
	HalfOpenCalls int
}

// OverpassProvider implements providers.POIProvider against the Overpass API.
// Every request goes through a circuit breaker so a failing upstream is not
// hammered by each search.
type OverpassProvider struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewOverpassProvider creates a provider for the public Overpass instance.
func NewOverpassProvider() providers.POIProvider {
	return NewOverpassProviderWithOptions(Options{})
}

// NewOverpassProviderWithOptions allows overriding the endpoint, HTTP client and breaker settings.
func NewOverpassProviderWithOptions(opts Options) providers.POIProvider {
	if strings.TrimSpace(opts.BaseURL) == "" {
		opts.BaseURL = defaultOverpassURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = defaultMaxFailures
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}
	if opts.HalfOpenCalls <= 0 {
		opts.HalfOpenCalls = defaultHalfOpenCalls
	}

	maxFailures := uint32(opts.MaxFailures)
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "overpass",
		MaxRequests: uint32(opts.HalfOpenCalls),
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A caller that went away says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.IsType(err, apperrors.ErrorTypeCancelled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("POI circuit breaker changed state")
		},
	})

	return &OverpassProvider{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		breaker:    breaker,
	}
}

// SearchAround returns facilities of the given types within radiusMeters of center.
func (p *OverpassProvider) SearchAround(ctx context.Context, center providers.Coordinates, radiusMeters int, types []entities.FacilityType) ([]providers.POIRecord, error) {
	if radiusMeters <= 0 {
		return nil, apperrors.NewValidationError("search radius must be positive")
	}
	filter := fmt.Sprintf("(around:%d,%f,%f)", radiusMeters, center.Latitude, center.Longitude)
	return p.search(ctx, "poi.search_around", buildQuery("", filter, types), types)
}

// SearchInArea returns facilities of the given types inside a named administrative area.
func (p *OverpassProvider) SearchInArea(ctx context.Context, areaName string, types []entities.FacilityType) ([]providers.POIRecord, error) {
	name := strings.TrimSpace(areaName)
	if name == "" {
		return nil, apperrors.NewValidationError("area name is required")
	}
	area := fmt.Sprintf(`area["name"="%s"]["boundary"="administrative"]->.searchArea;`, escapeQL(name))
	return p.search(ctx, "poi.search_in_area", buildQuery(area, "(area.searchArea)", types), types)
}

func (p *OverpassProvider) search(ctx context.Context, spanName, query string, types []entities.FacilityType) ([]providers.POIRecord, error) {
	if len(types) == 0 {
		return nil, apperrors.NewValidationError("at least one facility type is required")
	}

	ctx, span := observability.StartSpan(ctx, spanName)
	defer span.End()

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetch(ctx, query)
	})
	if err != nil {
		observability.RecordError(span, err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewSearchProviderError("POI provider temporarily unavailable", err)
		}
		return nil, err
	}

	records := toRecords(result.(*overpassResponse).Elements, types)
	span.SetAttributes(attribute.Int("poi.results", len(records)))
	return records, nil
}

func (p *OverpassProvider) fetch(ctx context.Context, query string) (*overpassResponse, error) {
	form := url.Values{"data": []string{query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build POI request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewCancelledError("POI request abandoned by caller", ctx.Err())
		}
		return nil, apperrors.NewSearchProviderError("POI request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		observability.LoggerFromContext(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("POI provider returned an error")
		return nil, apperrors.NewSearchProviderError(fmt.Sprintf("POI provider returned status %d", resp.StatusCode), nil)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewCancelledError("POI request abandoned by caller", ctx.Err())
		}
		return nil, apperrors.NewSearchProviderError("malformed POI response", err)
	}
	return &decoded, nil
}

// buildQuery renders an Overpass QL query matching either the amenity or
// the healthcare tag against the requested types.
func buildQuery(prelude, filter string, types []entities.FacilityType) string {
	values := make([]string, 0, len(types))
	for _, t := range types {
		values = append(values, string(t))
	}
	pattern := "^(" + strings.Join(values, "|") + ")$"

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];", queryTimeoutSeconds)
	b.WriteString(prelude)
	b.WriteString("(")
	for _, key := range []string{"amenity", "healthcare"} {
		fmt.Fprintf(&b, `nwr["%s"~"%s"]%s;`, key, pattern, filter)
	}
	b.WriteString(");out center tags;")
	return b.String()
}

func escapeQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
