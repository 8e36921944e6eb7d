package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// questionResolver is the slice of ResolutionService a session needs.
type questionResolver interface {
	ResolveQuestion(ctx context.Context, customerID, question string) (*Resolution, error)
}

// salonFact pairs a topic keyword with its canned spoken answer. Facts are
// checked before the engine so the demo always has something to say about the
// basics, mirroring the receptionist's front-of-house script.
type salonFact struct {
	keyword string
	answer  string
}

var salonFacts = []salonFact{
	{"hours", "We are open from 9 AM to 5 PM, Tuesday to Sunday."},
	{"location", "We are located at 123 Main Street."},
	{"services", "We offer haircuts, coloring, and styling."},
}

// demoQuestions is the scripted conversation each simulated session walks
// through. The last question has no stored answer and exercises escalation.
var demoQuestions = []string{
	"What are your hours?",
	"Where are you located?",
	"What services do you offer?",
	"Do you offer wedding packages?",
}

// VoiceSessionSimulator stands in for the real media collaborator: it reacts
// to session_started events, transcribes a scripted set of questions into the
// engine, and "speaks" the answers by logging them. No engine logic depends
// on it; swapping in a real transport only requires calling the same engine
// methods.
type VoiceSessionSimulator struct {
	engine questionResolver
	bus    *SessionBus
	logger *logrus.Logger
	subID  string
	cancel context.CancelFunc

	// QuestionDelay is the pause between scripted questions.
	QuestionDelay time.Duration
}

// NewVoiceSessionSimulator creates a simulator wired to the bus and engine.
func NewVoiceSessionSimulator(engine questionResolver, bus *SessionBus) *VoiceSessionSimulator {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &VoiceSessionSimulator{
		engine:        engine,
		bus:           bus,
		logger:        logger,
		subID:         "voice-sim-" + uuid.NewString(),
		QuestionDelay: 2 * time.Second,
	}
}

// Start subscribes to session_started events and runs one simulated
// conversation per session.
func (v *VoiceSessionSimulator) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	events := v.bus.Subscribe(v.subID, 16)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-events:
				if event.Type != EventSessionStarted {
					continue
				}
				go v.runSession(ctx, event.CustomerID, event.Room)
			}
		}
	}()

	v.logger.Info("Voice session simulator started")
}

// Stop halts the simulator and unsubscribes from the bus.
func (v *VoiceSessionSimulator) Stop() {
	if v.cancel != nil {
		v.cancel()
	}
	v.bus.Unsubscribe(v.subID)
}

// runSession walks the scripted questions for one customer session.
func (v *VoiceSessionSimulator) runSession(ctx context.Context, customerID, room string) {
	sessionLog := v.logger.WithFields(logrus.Fields{
		"session_id": uuid.NewString(),
		"customer":   customerID,
		"room":       room,
	})
	sessionLog.Info("Starting voice simulation")

	for _, question := range demoQuestions {
		select {
		case <-ctx.Done():
			return
		case <-time.After(v.QuestionDelay):
		}

		sessionLog.WithField("question", question).Info("Simulated customer question")

		if answer, ok := v.localFact(question); ok {
			sessionLog.WithField("answer", answer).Info("Speaking canned answer")
			continue
		}

		resolution, err := v.engine.ResolveQuestion(ctx, customerID, question)
		if err != nil {
			sessionLog.WithError(err).Error("Failed to resolve question")
			continue
		}

		if resolution.AnsweredImmediately {
			sessionLog.WithField("answer", resolution.Answer).Info("Speaking learned answer")
		} else {
			sessionLog.WithField("request_id", resolution.Request.ID.Hex()).
				Info("No answer available, escalated to supervisor")
		}
	}

	sessionLog.Info("Voice simulation complete")
}

// localFact answers from the canned salon facts when the question mentions
// one of their topic keywords.
func (v *VoiceSessionSimulator) localFact(question string) (string, bool) {
	lower := strings.ToLower(question)
	for _, fact := range salonFacts {
		if strings.Contains(lower, fact.keyword) {
			return fact.answer, true
		}
	}
	return "", false
}
