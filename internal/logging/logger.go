package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithRequest returns a logger with help-request context fields attached.
// Use this for all logging along one request's resolution path.
func WithRequest(requestID, customerID string) *slog.Logger {
	return slog.With(
		"request_id", requestID,
		"customer_id", customerID,
	)
}

// WithSession returns a logger scoped to one media session.
func WithSession(logger *slog.Logger, sessionID, room string) *slog.Logger {
	return logger.With(
		"session_id", sessionID,
		"room", room,
	)
}
