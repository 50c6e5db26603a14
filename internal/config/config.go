// Package config loads process configuration from the environment once at
// startup. The resulting Config is passed by value and never mutated, so
// provider credentials are fixed for the life of the process.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Structured provider (JSON-following completions).
	OpenAIKey   string
	OpenAIModel string

	// Conversational provider (free-text replies).
	GeminiKey   string
	GeminiModel string

	// Optional audit event bus. Empty disables AMQP publishing.
	AMQPURL string

	CORSOrigin string

	// Bounds for every outbound provider call.
	ProviderTimeout  time.Duration
	ProviderAttempts int
}

func FromEnv() Config {
	return Config{
		Port:             env("PORT", "5000"),
		OpenAIKey:        env("OPENAI_API_KEY", ""),
		OpenAIModel:      env("OPENAI_MODEL", "gpt-3.5-turbo"),
		GeminiKey:        env("GEMINI_API_KEY", ""),
		GeminiModel:      env("GEMINI_MODEL", "gemini-2.0-flash"),
		AMQPURL:          env("AMQP_URL", ""),
		CORSOrigin:       env("CORS_ORIGIN", "https://spear-frontend.vercel.app"),
		ProviderTimeout:  time.Duration(envInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,
		ProviderAttempts: envInt("PROVIDER_MAX_ATTEMPTS", 3),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, _ := strconv.Atoi(v)
		if n > 0 {
			return n
		}
	}
	return def
}
