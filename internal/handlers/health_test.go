package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"frontline/internal/models"
	"github.com/gofiber/fiber/v2"
)

type fakeRequestCounter struct {
	counts map[models.RequestStatus]int64
	err    error
}

func (f *fakeRequestCounter) CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	return f.counts, f.err
}

func getHealth(t *testing.T, handler *HealthHandler) map[string]interface{} {
	t.Helper()
	app := fiber.New()
	app.Get("/api/health", handler.Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestHealthHandler(t *testing.T) {
	body := getHealth(t, NewHealthHandler(nil, nil))

	if body["status"] != "OK" {
		t.Errorf("Expected status OK, got %v", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("Expected a timestamp")
	}
	if _, present := body["requests"]; present {
		t.Error("No request counts expected without a store")
	}
}

func TestHealthHandler_RequestCounts(t *testing.T) {
	counter := &fakeRequestCounter{counts: map[models.RequestStatus]int64{
		models.RequestStatusPending:    2,
		models.RequestStatusResolved:   5,
		models.RequestStatusUnresolved: 1,
	}}

	body := getHealth(t, NewHealthHandler(nil, counter))

	counts, ok := body["requests"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected per-state request counts, got %v", body["requests"])
	}
	if counts["Pending"] != float64(2) || counts["Resolved"] != float64(5) || counts["Unresolved"] != float64(1) {
		t.Errorf("Unexpected counts: %v", counts)
	}
}
