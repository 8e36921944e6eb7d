package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"frontline/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recordingResolver counts which questions reached the engine.
type recordingResolver struct {
	mu        sync.Mutex
	questions []string
	done      chan struct{}
	want      int
}

func (r *recordingResolver) ResolveQuestion(ctx context.Context, customerID, question string) (*Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, question)
	if len(r.questions) == r.want {
		close(r.done)
	}
	return &Resolution{Request: &models.HelpRequest{
		ID:         primitive.NewObjectID(),
		CustomerID: customerID,
		Question:   question,
		Status:     models.RequestStatusPending,
	}}, nil
}

func TestVoiceSessionSimulator_RunsScriptedSession(t *testing.T) {
	// Only the wedding question lacks a canned fact and reaches the engine.
	resolver := &recordingResolver{done: make(chan struct{}), want: 1}
	bus := NewSessionBus()

	sim := NewVoiceSessionSimulator(resolver, bus)
	sim.QuestionDelay = time.Millisecond
	sim.Start()
	defer sim.Stop()

	bus.Publish(Event{Type: EventSessionStarted, CustomerID: "+15551234567", Room: "demo-room"})

	select {
	case <-resolver.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for the simulated session to escalate")
	}

	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	if len(resolver.questions) != 1 || resolver.questions[0] != "Do you offer wedding packages?" {
		t.Errorf("Expected only the wedding question to reach the engine, got %v", resolver.questions)
	}
}

func TestVoiceSessionSimulator_IgnoresOtherEvents(t *testing.T) {
	resolver := &recordingResolver{done: make(chan struct{}), want: 1}
	bus := NewSessionBus()

	sim := NewVoiceSessionSimulator(resolver, bus)
	sim.QuestionDelay = time.Millisecond
	sim.Start()
	defer sim.Stop()

	bus.Publish(Event{Type: EventRequestCreated, RequestID: "req-1"})

	select {
	case <-resolver.done:
		t.Fatal("A non-session event must not start a simulated conversation")
	case <-time.After(100 * time.Millisecond):
	}
}
