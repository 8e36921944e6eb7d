package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// sessionNotifier is how the token handler tells the engine a media session
// is starting. Explicit call instead of a shared global callback slot.
type sessionNotifier interface {
	OnSessionStarted(customerID, room string)
}

// TokenHandler issues access tokens for the real-time media service. The
// token format follows the LiveKit server SDK: HS256 JWT with a "video"
// grants claim scoped to one room.
type TokenHandler struct {
	apiKey    string
	apiSecret string
	serverURL string
	notifier  sessionNotifier
	tokenTTL  time.Duration
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(apiKey, apiSecret, serverURL string, notifier sessionNotifier) *TokenHandler {
	return &TokenHandler{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		serverURL: serverURL,
		notifier:  notifier,
		tokenTTL:  6 * time.Hour,
	}
}

type tokenRequestBody struct {
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName"`
}

// Generate issues a media-session token and notifies the engine that the
// session is starting
// POST /api/token
func (h *TokenHandler) Generate(c *fiber.Ctx) error {
	var body tokenRequestBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if body.RoomName == "" || body.ParticipantName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "roomName and participantName are required",
		})
	}

	if h.apiKey == "" || h.apiSecret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Media session service is not configured",
		})
	}

	log.Printf("🎟️ Generating token for %s to join room %s", body.ParticipantName, body.RoomName)

	token, err := h.signToken(body.ParticipantName, body.RoomName)
	if err != nil {
		log.Printf("❌ Token generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	// The session collaborator is notified explicitly; the voice demo and
	// the supervisor feed react via the bus.
	if h.notifier != nil {
		h.notifier.OnSessionStarted(body.ParticipantName, body.RoomName)
	}

	return c.JSON(fiber.Map{
		"token":           token,
		"url":             h.serverURL,
		"participantName": body.ParticipantName,
		"roomName":        body.RoomName,
	})
}

// signToken builds the LiveKit-compatible access token: identity as subject,
// API key as issuer, and room grants in the "video" claim.
func (h *TokenHandler) signToken(identity, room string) (string, error) {
	metadata, err := json.Marshal(map[string]string{
		"role":     "customer",
		"joinTime": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      h.apiKey,
		"sub":      identity,
		"name":     identity,
		"nbf":      now.Unix(),
		"exp":      now.Add(h.tokenTTL).Unix(),
		"metadata": string(metadata),
		"video": map[string]interface{}{
			"roomJoin":       true,
			"room":           room,
			"canPublish":     true,
			"canSubscribe":   true,
			"canPublishData": true,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.apiSecret))
}
