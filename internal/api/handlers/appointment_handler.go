package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/medifind/internal/api/middleware"
	"github.com/zatekoja/medifind/internal/application/services"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
)

// AppointmentService defines the interface for appointment operations
type AppointmentService interface {
	Book(ctx context.Context, session *entities.Session, req services.BookRequest) (*entities.Appointment, error)
	ListMine(ctx context.Context, session *entities.Session, filter repositories.AppointmentFilter) ([]*entities.Appointment, error)
	List(ctx context.Context, session *entities.Session, filter repositories.AppointmentFilter) ([]*entities.Appointment, error)
	UpdateStatus(ctx context.Context, session *entities.Session, id, status string) (*entities.Appointment, error)
}

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	service AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
	}
}

// BookAppointment handles POST /api/appointments
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req services.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.service.Book(r.Context(), middleware.SessionFromContext(r.Context()), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// ListMyAppointments handles GET /api/appointments/me
func (h *AppointmentHandler) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	filter, ok := appointmentFilter(w, r)
	if !ok {
		return
	}

	appointments, err := h.service.ListMine(r.Context(), middleware.SessionFromContext(r.Context()), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": nonNilAppointments(appointments),
		"count":        len(appointments),
	})
}

// ListAppointments handles GET /api/admin/appointments
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	filter, ok := appointmentFilter(w, r)
	if !ok {
		return
	}

	appointments, err := h.service.List(r.Context(), middleware.SessionFromContext(r.Context()), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": nonNilAppointments(appointments),
		"count":        len(appointments),
	})
}

// UpdateStatus handles PATCH /api/admin/appointments/{id}/status
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.service.UpdateStatus(r.Context(), middleware.SessionFromContext(r.Context()), id, body.Status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

func appointmentFilter(w http.ResponseWriter, r *http.Request) (repositories.AppointmentFilter, bool) {
	query := r.URL.Query()
	filter := repositories.AppointmentFilter{
		DoctorID: strings.TrimSpace(query.Get("doctor_id")),
		Date:     strings.TrimSpace(query.Get("date")),
	}

	if s := query.Get("status"); s != "" {
		status, ok := entities.ParseAppointmentStatus(s)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid status parameter")
			return filter, false
		}
		filter.Status = status
	}

	var ok bool
	if filter.Limit, ok = intParam(w, query.Get("limit"), "limit"); !ok {
		return filter, false
	}
	if filter.Offset, ok = intParam(w, query.Get("offset"), "offset"); !ok {
		return filter, false
	}
	return filter, true
}

func intParam(w http.ResponseWriter, value, name string) (int, bool) {
	if value == "" {
		return 0, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		respondWithError(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}

func nonNilAppointments(appointments []*entities.Appointment) []*entities.Appointment {
	if appointments == nil {
		return []*entities.Appointment{}
	}
	return appointments
}
