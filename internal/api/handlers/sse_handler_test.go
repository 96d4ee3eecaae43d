package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medifind/internal/api/handlers"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
)

func TestSSEHandler_StreamDoctorQueue(t *testing.T) {
	t.Run("streams queue events for the doctor and date", func(t *testing.T) {
		bus := NewMockEventBus()
		handler := handlers.NewSSEHandler(bus).WithHeartbeat(time.Hour)

		req := httptest.NewRequest(http.MethodGet, "/api/stream/doctors/doc-1/queue?date=2025-03-01", nil)
		req.SetPathValue("id", "doc-1")
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamDoctorQueue(w, req)
			close(done)
		}()

		var channel string
		select {
		case channel = <-bus.subscribed:
		case <-time.After(2 * time.Second):
			t.Fatal("handler never subscribed")
		}
		require.Equal(t, providers.GetQueueChannel("doc-1", "2025-03-01"), channel)

		require.NoError(t, bus.Publish(context.Background(), channel, &entities.QueueEvent{
			ID:              "evt-1",
			Type:            entities.QueueEventBooked,
			DoctorID:        "doc-1",
			AppointmentDate: "2025-03-01",
			TokenNumber:     4,
			ScheduledTime:   "10:45",
		}))
		require.NoError(t, bus.Unsubscribe(context.Background(), channel))

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after the channel closed")
		}

		body := w.Body.String()
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		assert.True(t, strings.HasPrefix(body, "event: connected\n"))
		assert.Contains(t, body, "event: appointment.booked\n")
		assert.Contains(t, body, `"token_number":4`)
		assert.Equal(t, 0, handler.ClientCount())
	})

	t.Run("client disconnect ends the stream", func(t *testing.T) {
		bus := NewMockEventBus()
		handler := handlers.NewSSEHandler(bus)

		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/api/stream/doctors/doc-2/queue", nil).WithContext(ctx)
		req.SetPathValue("id", "doc-2")
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamDoctorQueue(w, req)
			close(done)
		}()

		channel := <-bus.subscribed
		assert.Equal(t, providers.GetQueueChannel("doc-2", time.Now().Format(entities.DateLayout)), channel)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		handler := handlers.NewSSEHandler(NewMockEventBus())
		req := httptest.NewRequest(http.MethodGet, "/api/stream/doctors/doc-1/queue?date=01-03-2025", nil)
		req.SetPathValue("id", "doc-1")
		w := httptest.NewRecorder()

		handler.StreamDoctorQueue(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires a doctor id", func(t *testing.T) {
		handler := handlers.NewSSEHandler(NewMockEventBus())
		req := httptest.NewRequest(http.MethodGet, "/api/stream/doctors//queue", nil)
		w := httptest.NewRecorder()

		handler.StreamDoctorQueue(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
