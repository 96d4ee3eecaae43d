package providers

import (
	"context"

	"github.com/zatekoja/medifind/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to queue events
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.QueueEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed when ctx is done or Unsubscribe is called.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelQueuePrefix is the prefix for per-doctor, per-day queue channels
const EventChannelQueuePrefix = "queue:"

// GetQueueChannel returns the channel carrying queue updates for a doctor on a date
func GetQueueChannel(doctorID, date string) string {
	return EventChannelQueuePrefix + doctorID + ":" + date
}
