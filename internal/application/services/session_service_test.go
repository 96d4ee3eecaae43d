package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medifind/internal/adapters/cache"
	"github.com/zatekoja/medifind/internal/application/services"
	"github.com/zatekoja/medifind/internal/domain/entities"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

func newSessionService(t *testing.T) *services.SessionService {
	t.Helper()
	store, err := cache.NewMemoryAdapter(64)
	require.NoError(t, err)
	verifier := fakeIdentityVerifier{
		"id-user-1":  {UserID: "user-1", Phone: "+91 98765 43210"},
		"id-admin-1": {UserID: "admin-1"},
	}
	return services.NewSessionService(store, verifier, time.Hour, []string{"admin-1"})
}

func TestSessionService(t *testing.T) {
	ctx := context.Background()

	t.Run("create then get", func(t *testing.T) {
		// Arrange
		svc := newSessionService(t)

		// Act
		created, err := svc.Create(ctx, "id-user-1")
		require.NoError(t, err)
		got, err := svc.Get(ctx, created.Token)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.UserID)
		assert.Equal(t, "+91 98765 43210", got.Phone)
		assert.Equal(t, entities.RolePatient, got.Role)
		assert.WithinDuration(t, created.ExpiresAt, got.ExpiresAt, time.Second)
	})

	t.Run("configured admins get the admin role", func(t *testing.T) {
		svc := newSessionService(t)

		session, err := svc.Create(ctx, "id-admin-1")

		require.NoError(t, err)
		assert.True(t, session.IsAdmin())
	})

	t.Run("refresh extends expiry", func(t *testing.T) {
		svc := newSessionService(t)
		created, err := svc.Create(ctx, "id-user-1")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		refreshed, err := svc.Refresh(ctx, created.Token)

		require.NoError(t, err)
		assert.True(t, refreshed.ExpiresAt.After(created.ExpiresAt))
		assert.Equal(t, created.Token, refreshed.Token)
	})

	t.Run("cleared session is unauthorized", func(t *testing.T) {
		svc := newSessionService(t)
		created, err := svc.Create(ctx, "id-user-1")
		require.NoError(t, err)

		require.NoError(t, svc.Clear(ctx, created.Token))
		_, err = svc.Get(ctx, created.Token)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("unknown and blank tokens are unauthorized", func(t *testing.T) {
		svc := newSessionService(t)

		_, err := svc.Get(ctx, "nope")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

		_, err = svc.Get(ctx, "")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("identity token is required", func(t *testing.T) {
		svc := newSessionService(t)

		_, err := svc.Create(ctx, " ")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("unverified identity gets no session", func(t *testing.T) {
		svc := newSessionService(t)

		session, err := svc.Create(ctx, "admin-1")

		assert.Nil(t, session)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}
