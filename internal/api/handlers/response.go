package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

// StatusClientClosedRequest is reported when a search was superseded by a
// newer one from the same client.
const StatusClientClosedRequest = 499

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an application error to its HTTP status. Internal
// and persistence failures are logged and their detail is kept out of the
// response.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	message := "internal server error"
	errType := apperrors.TypeOf(err)
	status := statusFor(errType)
	var appErr *apperrors.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}

	logger := observability.LoggerFromContext(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("error_type", string(errType)).
		Msg("request failed")

	respondWithJSON(w, status, map[string]string{
		"error": message,
		"type":  string(errType),
	})
}

func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeMissingSearchLocation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeLocationNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeExternal, apperrors.ErrorTypeSearchProvider:
		return http.StatusBadGateway
	case apperrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrorTypeCancelled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
