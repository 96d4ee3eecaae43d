package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/medifind/internal/application/services"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
)

// DoctorService defines the interface for browsing doctors
type DoctorService interface {
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)
	List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error)
}

// TokenPreviewer reports the next token a booking would receive
type TokenPreviewer interface {
	PreviewNextToken(ctx context.Context, doctorID, date string) (*services.TokenPreview, error)
}

// DoctorHandler handles doctor requests
type DoctorHandler struct {
	doctors DoctorService
	tokens  TokenPreviewer
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(doctors DoctorService, tokens TokenPreviewer) *DoctorHandler {
	return &DoctorHandler{
		doctors: doctors,
		tokens:  tokens,
	}
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.DoctorFilter{
		HospitalID:     strings.TrimSpace(query.Get("hospital_id")),
		Specialization: query.Get("specialization"),
	}

	var ok bool
	if filter.Limit, ok = intParam(w, query.Get("limit"), "limit"); !ok {
		return
	}
	if filter.Offset, ok = intParam(w, query.Get("offset"), "offset"); !ok {
		return
	}

	doctors, err := h.doctors.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if doctors == nil {
		doctors = []*entities.Doctor{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetDoctor handles GET /api/doctors/{id}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.doctors.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, doctor)
}

// NextToken handles GET /api/doctors/{id}/next-token?date=YYYY-MM-DD
func (h *DoctorHandler) NextToken(w http.ResponseWriter, r *http.Request) {
	preview, err := h.tokens.PreviewNextToken(r.Context(), r.PathValue("id"), r.URL.Query().Get("date"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, preview)
}
