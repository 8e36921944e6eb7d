package services

import (
	"context"
	"log"
	"strings"
	"time"

	"frontline/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// questionMatcher is the slice of Matcher the engine depends on.
type questionMatcher interface {
	Match(ctx context.Context, question string) (string, bool, error)
	Invalidate()
}

// requestLifecycle is the slice of RequestStore the engine depends on.
type requestLifecycle interface {
	Create(ctx context.Context, req *models.HelpRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.HelpRequest, error)
	List(ctx context.Context, status models.RequestStatus) ([]models.HelpRequest, error)
	MarkResolved(ctx context.Context, id primitive.ObjectID, answer string) (*models.HelpRequest, bool, error)
}

// knowledgeLearner is the slice of KnowledgeStore the engine writes to.
type knowledgeLearner interface {
	Upsert(ctx context.Context, question, answer string) error
}

// Resolution is the outcome of one incoming question: either an immediate
// answer from the knowledge base, or a newly created Pending request.
type Resolution struct {
	AnsweredImmediately bool                `json:"answered_immediately"`
	Answer              string              `json:"answer,omitempty"`
	Request             *models.HelpRequest `json:"request,omitempty"`
}

// ResolutionService orchestrates the question lifecycle: match against the
// knowledge base, escalate misses to a supervisor, apply supervisor answers
// back to both the request and the knowledge base.
type ResolutionService struct {
	matcher   questionMatcher
	requests  requestLifecycle
	knowledge knowledgeLearner
	bus       *SessionBus
	metrics   *Metrics
}

// NewResolutionService creates a new resolution service. bus and metrics
// may be nil.
func NewResolutionService(matcher questionMatcher, requests requestLifecycle, knowledge knowledgeLearner, bus *SessionBus, metrics *Metrics) *ResolutionService {
	return &ResolutionService{
		matcher:   matcher,
		requests:  requests,
		knowledge: knowledge,
		bus:       bus,
		metrics:   metrics,
	}
}

// ResolveQuestion answers a customer question from the knowledge base, or
// escalates it as a Pending help request when no stored answer applies.
// Matcher lookup failures degrade to escalation - a question is never failed
// just because the knowledge lookup errored. A failed escalation insert is
// the one path that surfaces a StorageError.
func (s *ResolutionService) ResolveQuestion(ctx context.Context, customerID, question string) (*Resolution, error) {
	customerID = strings.TrimSpace(customerID)
	question = strings.TrimSpace(question)
	if customerID == "" || question == "" {
		return nil, ErrInvalidInput
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ResolveLatency.Observe(time.Since(start).Seconds())
		}
	}()

	log.Printf("🤖 [ENGINE] Customer %s asks: %q", customerID, question)

	answer, matched, err := s.matcher.Match(ctx, question)
	if err != nil {
		log.Printf("⚠️ [ENGINE] Knowledge lookup failed, escalating instead: %v", err)
		matched = false
	}

	if matched {
		s.countLookup("hit")
		log.Printf("💬 [ENGINE] Answered %s from knowledge base: %q", customerID, answer)
		s.publish(Event{
			Type:       EventAnswerDelivered,
			CustomerID: customerID,
			Payload:    map[string]interface{}{"question": question, "answer": answer},
		})
		return &Resolution{AnsweredImmediately: true, Answer: answer}, nil
	}

	s.countLookup("miss")

	req := &models.HelpRequest{
		CustomerID: customerID,
		Question:   question,
		Status:     models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, NewStorageError("create help request", err)
	}

	if s.metrics != nil {
		s.metrics.Escalations.Inc()
	}
	log.Printf("🔔 [ENGINE] Supervisor alert: new help request %s, question %q", req.ID.Hex(), question)

	s.publish(Event{
		Type:       EventRequestCreated,
		CustomerID: customerID,
		RequestID:  req.ID.Hex(),
		Payload:    map[string]interface{}{"question": question},
	})

	return &Resolution{AnsweredImmediately: false, Request: req}, nil
}

// Resolve applies a supervisor's answer to a Pending request and writes the
// answer into the knowledge base. A request resolves at most once: the store
// update is conditioned on status == Pending, so a duplicate resolve or a
// race with the timeout sweep yields ErrAlreadyClosed instead of a second
// write.
func (s *ResolutionService) Resolve(ctx context.Context, id primitive.ObjectID, answer string) (*models.HelpRequest, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, NewStorageError("load help request", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if existing.Status != models.RequestStatusPending {
		return nil, ErrAlreadyClosed
	}

	updated, won, err := s.requests.MarkResolved(ctx, id, answer)
	if err != nil {
		return nil, NewStorageError("resolve help request", err)
	}
	if !won {
		// The sweep or another resolve got there first.
		return nil, ErrAlreadyClosed
	}

	log.Printf("📱 [ENGINE] Customer text-back: replying to %s about %q with %q",
		updated.CustomerID, updated.Question, answer)

	// Learning step. The request transition already committed; a failure here
	// is surfaced so the caller can retry the knowledge write out of band.
	if err := s.knowledge.Upsert(ctx, updated.Question, answer); err != nil {
		return nil, NewStorageError("learn answer", err)
	}
	s.matcher.Invalidate()

	if s.metrics != nil {
		s.metrics.Resolutions.Inc()
	}

	s.publish(Event{
		Type:       EventRequestResolved,
		CustomerID: updated.CustomerID,
		RequestID:  updated.ID.Hex(),
		Payload:    map[string]interface{}{"question": updated.Question, "answer": answer},
	})

	return updated, nil
}

// ListRequests returns help requests newest-first. statusFilter is one of the
// three lifecycle states, or empty for all.
func (s *ResolutionService) ListRequests(ctx context.Context, statusFilter string) ([]models.HelpRequest, error) {
	status := models.RequestStatus(statusFilter)
	if statusFilter != "" && !status.IsValid() {
		return nil, ErrInvalidInput
	}

	requests, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, NewStorageError("list help requests", err)
	}
	return requests, nil
}

// OnSessionStarted notifies the engine that a media session began for a
// customer. The session collaborator calls this directly; downstream
// consumers (the voice demo, the supervisor feed) pick it up from the bus.
func (s *ResolutionService) OnSessionStarted(customerID, room string) {
	log.Printf("🎤 [ENGINE] Session started for %s in room %s", customerID, room)
	s.publish(Event{
		Type:       EventSessionStarted,
		CustomerID: customerID,
		Room:       room,
	})
}

func (s *ResolutionService) publish(event Event) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

func (s *ResolutionService) countLookup(outcome string) {
	if s.metrics != nil {
		s.metrics.MatcherLookups.WithLabelValues(outcome).Inc()
	}
}
