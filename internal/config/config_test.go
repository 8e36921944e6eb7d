package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "SWEEP_SCHEDULE", "PENDING_REQUEST_TTL_HOURS", "VOICE_DEMO_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Port)
	}
	if cfg.SweepSchedule != "0 * * * *" {
		t.Errorf("Expected hourly sweep by default, got %s", cfg.SweepSchedule)
	}
	if cfg.PendingTTL != 24*time.Hour {
		t.Errorf("Expected 24h pending TTL by default, got %s", cfg.PendingTTL)
	}
	if !cfg.VoiceDemoEnabled {
		t.Error("Expected the voice demo enabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SWEEP_SCHEDULE", "*/30 * * * *")
	t.Setenv("PENDING_REQUEST_TTL_HOURS", "48")
	t.Setenv("VOICE_DEMO_ENABLED", "false")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected port override, got %s", cfg.Port)
	}
	if cfg.SweepSchedule != "*/30 * * * *" {
		t.Errorf("Expected schedule override, got %s", cfg.SweepSchedule)
	}
	if cfg.PendingTTL != 48*time.Hour {
		t.Errorf("Expected 48h pending TTL, got %s", cfg.PendingTTL)
	}
	if cfg.VoiceDemoEnabled {
		t.Error("Expected the voice demo disabled")
	}
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("PENDING_REQUEST_TTL_HOURS", "soon")
	t.Setenv("VOICE_DEMO_ENABLED", "maybe")

	cfg := Load()

	if cfg.PendingTTL != 24*time.Hour {
		t.Errorf("Expected the default TTL for a malformed value, got %s", cfg.PendingTTL)
	}
	if !cfg.VoiceDemoEnabled {
		t.Error("Expected the default for a malformed bool")
	}
}
