package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/medifind/internal/domain/entities"
)

// MedicineSearcher searches the medicine catalog
type MedicineSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]*entities.Medicine, error)
}

// MedicineHandler handles medicine catalog requests
type MedicineHandler struct {
	catalog MedicineSearcher
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(catalog MedicineSearcher) *MedicineHandler {
	return &MedicineHandler{catalog: catalog}
}

// SearchMedicines handles GET /api/medicines/search?q=&limit=
func (h *MedicineHandler) SearchMedicines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := intParam(w, query.Get("limit"), "limit")
	if !ok {
		return
	}

	medicines, err := h.catalog.Search(r.Context(), strings.TrimSpace(query.Get("q")), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if medicines == nil {
		medicines = []*entities.Medicine{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"medicines": medicines,
		"count":     len(medicines),
	})
}
