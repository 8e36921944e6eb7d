package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestLoadRateLimitConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_GLOBAL_API", "50")
	t.Setenv("RATE_LIMIT_QUESTIONS", "5")
	t.Setenv("RATE_LIMIT_WEBSOCKET", "not-a-number")

	config := LoadRateLimitConfig()

	if config.GlobalAPIMax != 50 {
		t.Errorf("Expected global max 50, got %d", config.GlobalAPIMax)
	}
	if config.QuestionMax != 5 {
		t.Errorf("Expected question max 5, got %d", config.QuestionMax)
	}
	if config.WebSocketMax != DefaultRateLimitConfig().WebSocketMax {
		t.Errorf("Expected the default websocket max for a malformed value, got %d", config.WebSocketMax)
	}
}

func TestQuestionRateLimiter_Returns429(t *testing.T) {
	config := &RateLimitConfig{
		QuestionMax:        2,
		QuestionExpiration: time.Minute,
	}

	app := fiber.New()
	app.Post("/api/requests/create", QuestionRateLimiter(config), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/requests/create", nil))
		if err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("Request %d: expected 200 under the limit, got %d", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/api/requests/create", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("Expected 429 over the limit, got %d", resp.StatusCode)
	}
}
