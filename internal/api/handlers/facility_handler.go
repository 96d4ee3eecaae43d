package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/medifind/internal/api/middleware"
	"github.com/zatekoja/medifind/internal/domain/entities"
)

// FacilitySearcher resolves facility searches
type FacilitySearcher interface {
	Resolve(ctx context.Context, req entities.FacilitySearchRequest) (*entities.FacilitySearchResult, error)
}

// FacilityReader loads a single stored facility
type FacilityReader interface {
	GetByID(ctx context.Context, id string) (*entities.Facility, error)
}

// ClientIDHeader lets anonymous callers identify themselves so a newer
// search can supersede one still in flight.
const ClientIDHeader = "X-Client-ID"

// FacilityHandler handles facility requests
type FacilityHandler struct {
	searcher   FacilitySearcher
	facilities FacilityReader
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(searcher FacilitySearcher, facilities FacilityReader) *FacilityHandler {
	return &FacilityHandler{
		searcher:   searcher,
		facilities: facilities,
	}
}

// SearchFacilities handles GET /api/facilities/search
func (h *FacilityHandler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := entities.FacilitySearchRequest{
		Query:     strings.TrimSpace(query.Get("q")),
		State:     strings.TrimSpace(query.Get("state")),
		District:  strings.TrimSpace(query.Get("district")),
		Category:  entities.SearchCategory(strings.TrimSpace(query.Get("type"))),
		ClientKey: clientKey(r),
	}

	latStr, lonStr := query.Get("lat"), query.Get("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil || lat < -90 || lat > 90 {
			respondWithError(w, http.StatusBadRequest, "invalid lat parameter")
			return
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil || lon < -180 || lon > 180 {
			respondWithError(w, http.StatusBadRequest, "invalid lon parameter")
			return
		}
		req.Latitude, req.Longitude = &lat, &lon
	}

	result, err := h.searcher.Resolve(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	facility, err := h.facilities.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

func clientKey(r *http.Request) string {
	if session := middleware.SessionFromContext(r.Context()); session != nil {
		return "user:" + session.UserID
	}
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return "client:" + id
	}
	return ""
}
