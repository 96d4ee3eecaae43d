package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

type sessionContextKey struct{}

// SessionLookup resolves a bearer token to a live session
type SessionLookup interface {
	Get(ctx context.Context, token string) (*entities.Session, error)
}

// WithSession returns a copy of ctx carrying session
func WithSession(ctx context.Context, session *entities.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the session attached by Authenticate, or nil
func SessionFromContext(ctx context.Context) *entities.Session {
	session, _ := ctx.Value(sessionContextKey{}).(*entities.Session)
	return session
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate attaches the caller's session to the request context when a
// valid bearer token is presented. Requests without one pass through
// anonymously; services decide whether a session is required.
func Authenticate(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.Get(r.Context(), token)
			if err != nil {
				if !apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
					observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("session lookup failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
