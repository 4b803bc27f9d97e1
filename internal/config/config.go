package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Appointment store
	StoreBackend     string // "postgres" or "file"
	DatabaseURL      string
	AppointmentsFile string

	// Dialogue sessions
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	// Slot finding
	LookaheadDays int

	// Speech
	GoogleCredentialsFile string
	SpeechLanguage        string
	TTSVoice              string

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimit          float64
	RateLimitBurst     int

	// Wake-word assistant
	WakeWord    string
	ListenShort time.Duration
	ListenLong  time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:     strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "postgres"))),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AppointmentsFile: getEnv("APPOINTMENTS_FILE", "appointments.csv"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 30*time.Minute),

		LookaheadDays: getEnvAsInt("SLOT_LOOKAHEAD_DAYS", 30),

		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		SpeechLanguage:        getEnv("SPEECH_LANGUAGE", "en-IN"),
		TTSVoice:              getEnv("TTS_VOICE", "en-IN-Wavenet-A"),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimit:          getEnvAsFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		WakeWord:    strings.ToLower(getEnv("WAKE_WORD", "hello")),
		ListenShort: getEnvAsDuration("LISTEN_SHORT", 2*time.Second),
		ListenLong:  getEnvAsDuration("LISTEN_LONG", 5*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
