package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/medifind/internal/api/middleware"
	"github.com/zatekoja/medifind/internal/domain/entities"
)

// SessionService defines the interface for session lifecycle operations
type SessionService interface {
	Create(ctx context.Context, identityToken string) (*entities.Session, error)
	Refresh(ctx context.Context, token string) (*entities.Session, error)
	Clear(ctx context.Context, token string) error
}

// SessionHandler issues, refreshes and clears sessions
type SessionHandler struct {
	sessions SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession handles POST /api/sessions. The body carries the identity
// token issued by the identity provider; user id and phone come from it.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	session, err := h.sessions.Create(r.Context(), strings.TrimSpace(body.IDToken))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

// RefreshSession handles POST /api/sessions/refresh
func (h *SessionHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "bearer token is required")
		return
	}

	session, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// ClearSession handles DELETE /api/sessions
func (h *SessionHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "bearer token is required")
		return
	}

	if err := h.sessions.Clear(r.Context(), token); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
