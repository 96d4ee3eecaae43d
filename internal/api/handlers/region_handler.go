package handlers

import (
	"net/http"

	"github.com/zatekoja/medifind/pkg/regions"
)

// RegionHandler serves the state and district selector
type RegionHandler struct {
	catalog *regions.Catalog
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(catalog *regions.Catalog) *RegionHandler {
	return &RegionHandler{catalog: catalog}
}

// ListStates handles GET /api/regions
func (h *RegionHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"states": h.catalog.States(),
	})
}

// ListDistricts handles GET /api/regions/{state}/districts
func (h *RegionHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	state := r.PathValue("state")
	districts, ok := h.catalog.Districts(state)
	if !ok {
		respondWithError(w, http.StatusNotFound, "unknown state")
		return
	}

	canonical, _ := h.catalog.Canonical(state, "")
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"state":     canonical,
		"districts": districts,
	})
}
