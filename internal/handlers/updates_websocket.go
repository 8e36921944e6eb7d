package handlers

import (
	"log"

	"frontline/internal/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// UpdatesWebSocketHandler streams request lifecycle events to the supervisor
// UI: escalations, resolutions, and sweep expirations as they happen, instead
// of the UI polling the list endpoint.
type UpdatesWebSocketHandler struct {
	bus *services.SessionBus
}

// NewUpdatesWebSocketHandler creates a new updates handler
func NewUpdatesWebSocketHandler(bus *services.SessionBus) *UpdatesWebSocketHandler {
	return &UpdatesWebSocketHandler{bus: bus}
}

// Handle serves one supervisor connection. Events buffered while no
// supervisor was connected are delivered first as a missed_updates frame.
func (h *UpdatesWebSocketHandler) Handle(c *websocket.Conn) {
	subID := "supervisor-" + uuid.NewString()
	events := h.bus.SubscribeSupervisor(subID, 32)
	defer h.bus.Unsubscribe(subID)

	if pending := h.bus.DrainPending(); len(pending) > 0 {
		if err := c.WriteJSON(map[string]interface{}{
			"type":   "missed_updates",
			"events": pending,
		}); err != nil {
			log.Printf("⚠️ [UPDATES-WS] Failed to send missed updates: %v", err)
			return
		}
	}

	// Reader goroutine only detects close; supervisors don't send anything.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event := <-events:
			if err := c.WriteJSON(event); err != nil {
				log.Printf("⚠️ [UPDATES-WS] Write failed, closing %s: %v", subID, err)
				return
			}
		}
	}
}
