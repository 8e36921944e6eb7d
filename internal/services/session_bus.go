package services

import (
	"log"
	"sync"
	"time"
)

// maxPendingEvents is the maximum number of important events buffered when a
// supervisor has no live subscriber (e.g. between UI disconnect and reconnect).
const maxPendingEvents = 50

// Event types published on the bus.
const (
	EventSessionStarted  = "session_started"
	EventRequestCreated  = "request_created"
	EventRequestResolved = "request_resolved"
	EventRequestExpired  = "request_expired"
	EventAnswerDelivered = "answer_delivered"
)

// importantEventTypes are the event types worth buffering for disconnected
// subscribers. Transient delivery notices are not buffered.
var importantEventTypes = map[string]bool{
	EventRequestCreated:  true,
	EventRequestResolved: true,
	EventRequestExpired:  true,
}

// Event is one notification on the session bus.
type Event struct {
	Type       string                 `json:"type"`
	CustomerID string                 `json:"customer_id,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	Room       string                 `json:"room,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	At         time.Time              `json:"at"`
}

// subscriber is one attached consumer. Supervisor subscribers are the ones
// the pending buffer exists for; internal consumers (voice sessions, the
// Redis fan-out) never suppress buffering.
type subscriber struct {
	ch         chan Event
	supervisor bool
}

// SessionBus is an in-memory pub/sub connecting the transport layer, the
// resolution engine, and the voice-session collaborator. The token handler
// publishes session_started here instead of poking a shared global callback,
// and the supervisor live feed subscribes to lifecycle events.
//
// Important events are buffered while no supervisor is subscribed and drained
// to the next supervisor, so a reconnecting supervisor does not miss
// escalations.
type SessionBus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber // subID -> subscriber
	pending     []Event
}

// NewSessionBus creates a new session bus
func NewSessionBus() *SessionBus {
	return &SessionBus{
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribe attaches an internal consumer. Returns a receive-only channel.
// Internal consumers receive live events only and do not count toward the
// supervisor presence that gates buffering.
func (b *SessionBus) Subscribe(subID string, bufSize int) <-chan Event {
	return b.subscribe(subID, bufSize, false)
}

// SubscribeSupervisor attaches a supervisor consumer. While at least one
// supervisor is attached, important events are delivered instead of buffered.
// Buffered events are not auto-drained - call DrainPending separately so the
// supervisor can present them as missed updates.
func (b *SessionBus) SubscribeSupervisor(subID string, bufSize int) <-chan Event {
	return b.subscribe(subID, bufSize, true)
}

func (b *SessionBus) subscribe(subID string, bufSize int, supervisor bool) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufSize)
	b.subscribers[subID] = &subscriber{ch: ch, supervisor: supervisor}

	log.Printf("[SESSION-BUS] Subscribe: sub=%s supervisor=%t (total=%d)", subID, supervisor, len(b.subscribers))
	return ch
}

// Unsubscribe removes a subscription. The channel is not closed - the
// subscriber's goroutine exits via its own done signal.
func (b *SessionBus) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, subID)
	log.Printf("[SESSION-BUS] Unsubscribe: sub=%s (remaining=%d)", subID, len(b.subscribers))
}

// DrainPending returns and clears all buffered events.
func (b *SessionBus) DrainPending() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.pending
	b.pending = nil

	if len(events) > 0 {
		log.Printf("[SESSION-BUS] Drained %d pending events", len(events))
	}
	return events
}

// Publish sends an event to every subscriber. Non-blocking - a subscriber
// whose channel is full drops the event. While no supervisor is connected,
// important events are additionally buffered up to maxPendingEvents; internal
// subscribers still receive them live.
func (b *SessionBus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	supervisorPresent := false
	for subID, sub := range b.subscribers {
		if sub.supervisor {
			supervisorPresent = true
		}
		select {
		case sub.ch <- event:
		default:
			log.Printf("[SESSION-BUS] Dropped %s event for slow subscriber %s", event.Type, subID)
		}
	}

	if !supervisorPresent && importantEventTypes[event.Type] {
		b.pending = append(b.pending, event)
		if len(b.pending) > maxPendingEvents {
			b.pending = b.pending[len(b.pending)-maxPendingEvents:]
		}
	}
}
