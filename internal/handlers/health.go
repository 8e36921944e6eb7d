package handlers

import (
	"context"
	"time"

	"frontline/internal/database"
	"frontline/internal/models"
	"github.com/gofiber/fiber/v2"
)

// requestCounter is the slice of the request store the health endpoint reads.
type requestCounter interface {
	CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	mongoDB  *database.MongoDB
	requests requestCounter
}

// NewHealthHandler creates a new health handler. requests may be nil.
func NewHealthHandler(mongoDB *database.MongoDB, requests requestCounter) *HealthHandler {
	return &HealthHandler{mongoDB: mongoDB, requests: requests}
}

// Handle responds with server health status and the per-state request counts
// the supervisor dashboard shows.
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	dbStatus := "ok"
	if h.mongoDB != nil {
		if err := h.mongoDB.Ping(c.Context()); err != nil {
			dbStatus = "unreachable"
		}
	}

	response := fiber.Map{
		"status":    "OK",
		"message":   "Backend is running",
		"database":  dbStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if h.requests != nil && dbStatus == "ok" {
		if counts, err := h.requests.CountByStatus(c.Context()); err == nil {
			response["requests"] = counts
		}
	}

	return c.JSON(response)
}
