package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port        string
	MongoURI    string
	RedisURL    string // optional, enables cross-instance event fan-out
	Environment string

	// Escalation sweep configuration
	SweepSchedule string        // cron spec, hourly by default
	PendingTTL    time.Duration // Pending requests older than this are expired

	// Knowledge base seeding
	KnowledgeSeedsPath string

	// Media session (LiveKit-compatible) token configuration
	LiveKitAPIKey    string
	LiveKitAPISecret string
	LiveKitURL       string

	// Voice demo simulation
	VoiceDemoEnabled bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "5000"),
		MongoURI:    getEnv("MONGODB_URI", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		Environment: getEnv("ENVIRONMENT", "development"),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "0 * * * *"),
		PendingTTL:    time.Duration(getIntEnv("PENDING_REQUEST_TTL_HOURS", 24)) * time.Hour,

		KnowledgeSeedsPath: getEnv("KNOWLEDGE_SEEDS_PATH", ""),

		LiveKitAPIKey:    getEnv("LIVEKIT_API_KEY", ""),
		LiveKitAPISecret: getEnv("LIVEKIT_API_SECRET", ""),
		LiveKitURL:       getEnv("LIVEKIT_URL", ""),

		VoiceDemoEnabled: getBoolEnv("VOICE_DEMO_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
