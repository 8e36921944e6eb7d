package services

import (
	"fmt"
	"testing"
	"time"
)

func TestSessionBus_PublishToSubscriber(t *testing.T) {
	bus := NewSessionBus()
	ch := bus.Subscribe("sub-1", 4)
	defer bus.Unsubscribe("sub-1")

	bus.Publish(Event{Type: EventRequestCreated, CustomerID: "+15551234567", RequestID: "abc123"})

	select {
	case event := <-ch:
		if event.Type != EventRequestCreated {
			t.Errorf("Unexpected event type %s", event.Type)
		}
		if event.CustomerID != "+15551234567" {
			t.Errorf("Unexpected customer %s", event.CustomerID)
		}
		if event.At.IsZero() {
			t.Error("Expected the publish timestamp to be stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestSessionBus_BuffersImportantEventsWhileDisconnected(t *testing.T) {
	bus := NewSessionBus()

	bus.Publish(Event{Type: EventRequestCreated, RequestID: "req-1"})
	bus.Publish(Event{Type: EventAnswerDelivered, CustomerID: "+15551234567"})
	bus.Publish(Event{Type: EventRequestExpired})

	pending := bus.DrainPending()
	if len(pending) != 2 {
		t.Fatalf("Expected 2 buffered events (delivery notices are not buffered), got %d", len(pending))
	}
	if pending[0].Type != EventRequestCreated || pending[1].Type != EventRequestExpired {
		t.Errorf("Buffered events out of order: %s, %s", pending[0].Type, pending[1].Type)
	}

	if again := bus.DrainPending(); len(again) != 0 {
		t.Errorf("Expected the drain to clear the buffer, got %d events", len(again))
	}
}

func TestSessionBus_BufferIsBounded(t *testing.T) {
	bus := NewSessionBus()

	for i := 0; i < maxPendingEvents+10; i++ {
		bus.Publish(Event{Type: EventRequestCreated, RequestID: fmt.Sprintf("req-%d", i)})
	}

	pending := bus.DrainPending()
	if len(pending) != maxPendingEvents {
		t.Fatalf("Expected buffer capped at %d, got %d", maxPendingEvents, len(pending))
	}
	// The oldest overflowed events are discarded.
	if pending[0].RequestID != "req-10" {
		t.Errorf("Expected oldest surviving event req-10, got %s", pending[0].RequestID)
	}
}

func TestSessionBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewSessionBus()
	ch := bus.Subscribe("slow", 1)
	defer bus.Unsubscribe("slow")

	done := make(chan struct{})
	go func() {
		bus.Publish(Event{Type: EventSessionStarted, Room: "room-1"})
		bus.Publish(Event{Type: EventSessionStarted, Room: "room-2"}) // dropped
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}

	event := <-ch
	if event.Room != "room-1" {
		t.Errorf("Expected the first event to survive, got room %s", event.Room)
	}
	select {
	case extra := <-ch:
		t.Errorf("Expected the second event to be dropped, got room %s", extra.Room)
	default:
	}
}

func TestSessionBus_NoBufferingWithLiveSupervisor(t *testing.T) {
	bus := NewSessionBus()
	bus.SubscribeSupervisor("supervisor-live", 4)
	defer bus.Unsubscribe("supervisor-live")

	bus.Publish(Event{Type: EventRequestCreated, RequestID: "req-1"})

	if pending := bus.DrainPending(); len(pending) != 0 {
		t.Errorf("Events delivered to a live supervisor must not be buffered, got %d", len(pending))
	}
}

func TestSessionBus_BuffersWhileOnlyInternalSubscribersAttached(t *testing.T) {
	bus := NewSessionBus()

	// The voice simulator and the Redis fan-out are always-on internal
	// consumers; they must not count as supervisor presence.
	voiceCh := bus.Subscribe("voice-sim-1", 4)
	bus.Subscribe("fanout-1", 4)
	defer bus.Unsubscribe("voice-sim-1")
	defer bus.Unsubscribe("fanout-1")

	bus.Publish(Event{Type: EventRequestCreated, RequestID: "req-1"})

	// The internal subscriber still sees the event live.
	select {
	case event := <-voiceCh:
		if event.RequestID != "req-1" {
			t.Errorf("Unexpected event %+v", event)
		}
	default:
		t.Error("Expected the internal subscriber to receive the event live")
	}

	// And the event is still waiting for the next supervisor.
	pending := bus.DrainPending()
	if len(pending) != 1 || pending[0].Type != EventRequestCreated {
		t.Fatalf("Expected the escalation buffered for the next supervisor, got %+v", pending)
	}
}

func TestSessionBus_SupervisorReconnectSeesMissedEscalations(t *testing.T) {
	bus := NewSessionBus()
	bus.Subscribe("voice-sim-1", 4)
	defer bus.Unsubscribe("voice-sim-1")

	supCh := bus.SubscribeSupervisor("supervisor-1", 4)
	bus.Publish(Event{Type: EventRequestCreated, RequestID: "req-1"})
	<-supCh
	bus.Unsubscribe("supervisor-1")

	// Escalations while the supervisor UI is disconnected.
	bus.Publish(Event{Type: EventRequestCreated, RequestID: "req-2"})
	bus.Publish(Event{Type: EventRequestResolved, RequestID: "req-2"})

	bus.SubscribeSupervisor("supervisor-2", 4)
	defer bus.Unsubscribe("supervisor-2")

	pending := bus.DrainPending()
	if len(pending) != 2 {
		t.Fatalf("Expected 2 missed events for the reconnecting supervisor, got %d", len(pending))
	}
	if pending[0].RequestID != "req-2" || pending[1].Type != EventRequestResolved {
		t.Errorf("Missed events out of order: %+v", pending)
	}
}
