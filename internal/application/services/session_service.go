package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionService issues, refreshes and clears sessions. A session is only
// issued for an identity token the verifier accepts. Sessions live in the cache.
type SessionService struct {
	cache    providers.CacheProvider
	verifier providers.IdentityVerifier
	ttl      time.Duration
	admins   map[string]struct{}
	now      func() time.Time
}

// NewSessionService creates a new session service. Verified users listed in
// adminUserIDs receive the admin role.
func NewSessionService(cache providers.CacheProvider, verifier providers.IdentityVerifier, ttl time.Duration, adminUserIDs []string) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	admins := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = struct{}{}
	}
	return &SessionService{
		cache:    cache,
		verifier: verifier,
		ttl:      ttl,
		admins:   admins,
		now:      time.Now,
	}
}

// Create verifies an identity token and starts a session for its subject.
// The role is derived from the verified subject only.
func (s *SessionService) Create(ctx context.Context, identityToken string) (*entities.Session, error) {
	if strings.TrimSpace(identityToken) == "" {
		return nil, apperrors.NewValidationError("id_token is required")
	}
	identity, err := s.verifier.Verify(ctx, identityToken)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Rejected identity token")
		return nil, err
	}
	userID := identity.UserID

	role := entities.RolePatient
	if _, ok := s.admins[userID]; ok {
		role = entities.RoleAdmin
	}

	now := s.now()
	session := &entities.Session{
		Token:       uuid.New().String(),
		UserID:      userID,
		Phone:       identity.Phone,
		Role:        role,
		CreatedAt:   now,
		RefreshedAt: now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", userID).Str("role", string(role)).Msg("Session created")
	return session, nil
}

// Get resolves a token to a live session
func (s *SessionService) Get(ctx context.Context, token string) (*entities.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("missing session token")
	}

	data, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, providers.ErrCacheMiss) {
		return nil, apperrors.NewUnauthorizedError("session expired or unknown")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load session", err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.NewInternalError("failed to decode session", err)
	}
	if session.Expired(s.now()) {
		_ = s.cache.Delete(ctx, sessionKeyPrefix+token)
		return nil, apperrors.NewUnauthorizedError("session expired or unknown")
	}
	return &session, nil
}

// Refresh extends a live session by the configured TTL
func (s *SessionService) Refresh(ctx context.Context, token string) (*entities.Session, error) {
	session, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	session.RefreshedAt = now
	session.ExpiresAt = now.Add(s.ttl)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Clear ends a session. Clearing an unknown token is not an error.
func (s *SessionService) Clear(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.cache.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return apperrors.NewInternalError("failed to clear session", err)
	}
	return nil
}

func (s *SessionService) save(ctx context.Context, session *entities.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session", err)
	}
	ttlSeconds := int(session.ExpiresAt.Sub(s.now()).Seconds())
	if ttlSeconds <= 0 {
		return apperrors.NewInternalError(fmt.Sprintf("session ttl %s is too short", s.ttl), nil)
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+session.Token, data, ttlSeconds); err != nil {
		return apperrors.NewInternalError("failed to store session", err)
	}
	return nil
}
