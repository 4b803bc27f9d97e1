package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.StoreBackend != "postgres" {
		t.Errorf("expected default store backend postgres, got %s", cfg.StoreBackend)
	}
	if cfg.LookaheadDays != 30 {
		t.Errorf("expected 30 lookahead days, got %d", cfg.LookaheadDays)
	}
	if cfg.WakeWord != "hello" {
		t.Errorf("expected wake word hello, got %s", cfg.WakeWord)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session TTL, got %s", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", " FILE ")
	t.Setenv("SLOT_LOOKAHEAD_DAYS", "7")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("WAKE_WORD", "JARVIS")

	cfg := Load()

	if cfg.StoreBackend != "file" {
		t.Errorf("expected trimmed lowercase backend, got %q", cfg.StoreBackend)
	}
	if cfg.LookaheadDays != 7 {
		t.Errorf("expected 7 lookahead days, got %d", cfg.LookaheadDays)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("expected 5m session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.WakeWord != "jarvis" {
		t.Errorf("expected lowercase wake word, got %q", cfg.WakeWord)
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()

	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("expected trimmed origin, got %q", cfg.CORSAllowedOrigins[1])
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("SLOT_LOOKAHEAD_DAYS", "soon")
	t.Setenv("SESSION_TTL", "whenever")

	cfg := Load()

	if cfg.LookaheadDays != 30 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.LookaheadDays)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("invalid duration should fall back to default, got %s", cfg.SessionTTL)
	}
}
