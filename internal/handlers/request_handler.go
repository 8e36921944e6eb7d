package handlers

import (
	"context"
	"errors"
	"log"

	"frontline/internal/models"
	"frontline/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// resolutionEngine is the slice of the resolution service the HTTP layer
// calls.
type resolutionEngine interface {
	ResolveQuestion(ctx context.Context, customerID, question string) (*services.Resolution, error)
	Resolve(ctx context.Context, id primitive.ObjectID, answer string) (*models.HelpRequest, error)
	ListRequests(ctx context.Context, statusFilter string) ([]models.HelpRequest, error)
}

// RequestHandler exposes the resolution engine over HTTP
type RequestHandler struct {
	engine resolutionEngine
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(engine resolutionEngine) *RequestHandler {
	return &RequestHandler{engine: engine}
}

type createRequestBody struct {
	CustomerID string `json:"customerId"`
	Question   string `json:"question"`
}

type answerBody struct {
	Answer string `json:"answer"`
}

// Create handles an incoming customer question: answered from the knowledge
// base (200) or escalated as a new Pending request (201)
// POST /api/requests/create
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var body createRequestBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resolution, err := h.engine.ResolveQuestion(c.Context(), body.CustomerID, body.Question)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "customerId and question are required",
			})
		}
		log.Printf("❌ Failed to resolve question: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process question",
		})
	}

	if resolution.AnsweredImmediately {
		return c.JSON(fiber.Map{
			"message":              "Question answered from knowledge base",
			"answered_immediately": true,
			"customer_id":          body.CustomerID,
			"question":             body.Question,
			"answer":               resolution.Answer,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resolution.Request)
}

// List returns help requests newest-first, optionally filtered by status
// GET /api/requests?status=Pending
func (h *RequestHandler) List(c *fiber.Ctx) error {
	requests, err := h.engine.ListRequests(c.Context(), c.Query("status"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "status must be one of Pending, Resolved, Unresolved",
			})
		}
		log.Printf("❌ Failed to list help requests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list help requests",
		})
	}
	return c.JSON(requests)
}

// Answer applies a supervisor's answer to a pending request
// POST /api/requests/:id/answer
func (h *RequestHandler) Answer(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Help request not found",
		})
	}

	var body answerBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := h.engine.Resolve(c.Context(), id, body.Answer)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Answer is required",
			})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Help request not found",
			})
		case errors.Is(err, services.ErrAlreadyClosed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "This request is already closed",
			})
		default:
			log.Printf("❌ Failed to submit answer: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to submit answer",
			})
		}
	}

	return c.JSON(updated)
}
