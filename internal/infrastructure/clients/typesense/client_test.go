package typesense

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medifind/pkg/config"
)

func TestNewClient(t *testing.T) {
	t.Run("connects once the server reports healthy", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			if calls.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"ok":false}`))
				return
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		client, err := NewClient(&config.TypesenseConfig{URL: server.URL, APIKey: "xyz"})

		require.NoError(t, err)
		require.NotNil(t, client.Client())
		assert.GreaterOrEqual(t, calls.Load(), int32(2))
	})
}
