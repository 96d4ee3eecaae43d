package routes

import (
	"net/http"

	"github.com/zatekoja/medifind/internal/api/handlers"
	"github.com/zatekoja/medifind/internal/api/middleware"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
)

// Handlers groups the route handlers the router mounts
type Handlers struct {
	Facility    *handlers.FacilityHandler
	Appointment *handlers.AppointmentHandler
	Doctor      *handlers.DoctorHandler
	Geolocation *handlers.GeolocationHandler
	Region      *handlers.RegionHandler
	Session     *handlers.SessionHandler
	Medicine    *handlers.MedicineHandler
	SSE         *handlers.SSEHandler
}

// Router holds all route handlers
type Router struct {
	mux            *http.ServeMux
	handlers       Handlers
	sessions       middleware.SessionLookup
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(h Handlers, sessions middleware.SessionLookup, allowedOrigins []string, metrics *observability.Metrics) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		handlers:       h,
		sessions:       sessions,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Facility endpoints
	r.handle("GET /api/facilities/search", r.handlers.Facility.SearchFacilities)
	r.handle("GET /api/facilities/{id}", r.handlers.Facility.GetFacility)

	// Region selector
	r.handle("GET /api/regions", r.handlers.Region.ListStates)
	r.handle("GET /api/regions/{state}/districts", r.handlers.Region.ListDistricts)

	// Geolocation endpoints
	r.handle("GET /api/geocode", r.handlers.Geolocation.Geocode)
	r.handle("GET /api/reverse-geocode", r.handlers.Geolocation.ReverseGeocode)

	// Doctors and booking
	r.handle("GET /api/doctors", r.handlers.Doctor.ListDoctors)
	r.handle("GET /api/doctors/{id}", r.handlers.Doctor.GetDoctor)
	r.handle("GET /api/doctors/{id}/next-token", r.handlers.Doctor.NextToken)
	r.handle("POST /api/appointments", r.handlers.Appointment.BookAppointment)
	r.handle("GET /api/appointments/me", r.handlers.Appointment.ListMyAppointments)

	// Admin endpoints; the service checks the session role
	r.handle("GET /api/admin/appointments", r.handlers.Appointment.ListAppointments)
	r.handle("PATCH /api/admin/appointments/{id}/status", r.handlers.Appointment.UpdateStatus)

	// Real-time queue updates
	r.handle("GET /api/stream/doctors/{id}/queue", r.handlers.SSE.StreamDoctorQueue)

	// Medicine catalog
	if r.handlers.Medicine != nil {
		r.handle("GET /api/medicines/search", r.handlers.Medicine.SearchMedicines)
	}

	// Sessions read the bearer token themselves
	r.mux.HandleFunc("POST /api/sessions", r.handlers.Session.CreateSession)
	r.mux.HandleFunc("POST /api/sessions/refresh", r.handlers.Session.RefreshSession)
	r.mux.HandleFunc("DELETE /api/sessions", r.handlers.Session.ClearSession)

	// Middleware wraps outward from the mux. Everything between the
	// observability middleware and the mux must pass the request through
	// unchanged so the matched pattern is visible for metrics.
	var handler http.Handler = r.mux
	handler = middleware.Compression(handler)
	handler = middleware.CacheControl(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

// handle mounts a handler behind session resolution
func (r *Router) handle(pattern string, fn http.HandlerFunc) {
	r.mux.Handle(pattern, middleware.Authenticate(r.sessions)(fn))
}
