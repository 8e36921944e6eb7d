package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// fanoutChannel is the Redis channel lifecycle events are mirrored to.
// External consumers (notification workers, dashboards on other instances)
// subscribe here; nothing in this process reads it back.
const fanoutChannel = "frontline:events"

// EventFanout mirrors session-bus events to Redis for consumers outside this
// process. It is a plain bus subscriber; when Redis is not configured the bus
// simply has one fewer subscriber.
type EventFanout struct {
	redis  *RedisService
	bus    *SessionBus
	subID  string
	cancel context.CancelFunc
}

// NewEventFanout creates a fan-out bridging bus events to Redis.
func NewEventFanout(redis *RedisService, bus *SessionBus) *EventFanout {
	return &EventFanout{
		redis: redis,
		bus:   bus,
		subID: "fanout-" + uuid.NewString(),
	}
}

// Start subscribes to the bus and begins mirroring events.
func (f *EventFanout) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel

	events := f.bus.Subscribe(f.subID, 64)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-events:
				f.mirror(ctx, event)
			}
		}
	}()

	log.Printf("📡 [FANOUT] Mirroring bus events to Redis channel %s", fanoutChannel)
}

// Stop unsubscribes from the bus and stops the mirror goroutine.
func (f *EventFanout) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.bus.Unsubscribe(f.subID)
}

func (f *EventFanout) mirror(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ [FANOUT] Failed to marshal %s event: %v", event.Type, err)
		return
	}
	if err := f.redis.Client().Publish(ctx, fanoutChannel, payload).Err(); err != nil {
		log.Printf("⚠️ [FANOUT] Failed to publish %s event: %v", event.Type, err)
	}
}
