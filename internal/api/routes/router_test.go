package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medifind/internal/adapters/cache"
	"github.com/zatekoja/medifind/internal/adapters/identity"
	"github.com/zatekoja/medifind/internal/api/handlers"
	"github.com/zatekoja/medifind/internal/application/services"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
	"github.com/zatekoja/medifind/pkg/regions"
)

// appointmentsStub answers ListMine with the caller's user id so tests can
// see which session reached the handler.
type appointmentsStub struct{}

func (appointmentsStub) Book(context.Context, *entities.Session, services.BookRequest) (*entities.Appointment, error) {
	return nil, apperrors.NewValidationError("not used")
}

func (appointmentsStub) ListMine(_ context.Context, session *entities.Session, _ repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	if session == nil {
		return nil, apperrors.NewUnauthorizedError("sign in to view appointments")
	}
	return []*entities.Appointment{{ID: "appt-1", PatientID: session.UserID}}, nil
}

func (appointmentsStub) List(_ context.Context, session *entities.Session, _ repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	if session == nil {
		return nil, apperrors.NewUnauthorizedError("sign in to view appointments")
	}
	if !session.IsAdmin() {
		return nil, apperrors.NewForbiddenError("admin role required")
	}
	return []*entities.Appointment{}, nil
}

func (appointmentsStub) UpdateStatus(context.Context, *entities.Session, string, string) (*entities.Appointment, error) {
	return nil, nil
}

const identitySecret = "identity-secret"

// signIdentity issues an identity token the way the identity provider does
func signIdentity(t *testing.T, key, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func newTestRouter(t *testing.T) (http.Handler, *services.SessionService) {
	t.Helper()

	catalog, err := regions.Default()
	require.NoError(t, err)
	memory, err := cache.NewMemoryAdapter(64)
	require.NoError(t, err)
	sessions := services.NewSessionService(memory, identity.NewJWTVerifier(identitySecret, ""), time.Hour, []string{"admin-1"})

	router := NewRouter(Handlers{
		Facility:    handlers.NewFacilityHandler(nil, nil),
		Appointment: handlers.NewAppointmentHandler(appointmentsStub{}),
		Doctor:      handlers.NewDoctorHandler(nil, nil),
		Geolocation: handlers.NewGeolocationHandler(nil),
		Region:      handlers.NewRegionHandler(catalog),
		Session:     handlers.NewSessionHandler(sessions),
		SSE:         handlers.NewSSEHandler(nil),
	}, sessions, []string{"https://app.example"}, nil)

	return router.SetupRoutes(), sessions
}

func TestRouter(t *testing.T) {
	handler, sessions := newTestRouter(t)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})

	t.Run("regions are cacheable", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/regions", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	})

	t.Run("bearer token reaches the service as a session", func(t *testing.T) {
		session, err := sessions.Create(context.Background(), signIdentity(t, identitySecret, "patient-7"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/appointments/me", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"patient_id":"patient-7"`)
	})

	t.Run("cleared session is rejected", func(t *testing.T) {
		session, err := sessions.Create(context.Background(), signIdentity(t, identitySecret, "patient-8"))
		require.NoError(t, err)

		clearReq := httptest.NewRequest(http.MethodDelete, "/api/sessions", nil)
		clearReq.Header.Set("Authorization", "Bearer "+session.Token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, clearReq)
		require.Equal(t, http.StatusNoContent, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/appointments/me", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("naming an admin id without a verified identity grants nothing", func(t *testing.T) {
		bodies := map[string]string{
			"bare user id":  `{"user_id":"admin-1"}`,
			"forged token":  `{"id_token":"` + signIdentity(t, "guessed-secret", "admin-1") + `"}`,
			"malformed jwt": `{"id_token":"admin-1"}`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body)))

				assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, w.Code)
				assert.NotContains(t, w.Body.String(), `"token"`)
			})
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("verified admin identity reaches admin routes", func(t *testing.T) {
		body := `{"id_token":"` + signIdentity(t, identitySecret, "admin-1") + `"}`
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, w.Code)

		var session entities.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, entities.RoleAdmin, session.Role)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("patient session is forbidden from admin routes", func(t *testing.T) {
		session, err := sessions.Create(context.Background(), signIdentity(t, identitySecret, "patient-9"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/appointments", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
