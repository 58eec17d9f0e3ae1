package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                 int
	NatsURL              string
	NatsToken            string
	DatabaseURL          string
	RedisURL             string
	LogLevel             string
	GeminiAPIKey         string
	GeminiModel          string
	ImprovementThreshold float64
	APIToken             string
}

func Load() Config {
	return Config{
		Port:                 envInt("COACH_PORT", 8760),
		NatsURL:              envStr("NATS_URL", "nats://nats:4222"),
		NatsToken:            envStr("NATS_TOKEN", ""),
		DatabaseURL:          envStr("DATABASE_URL", ""),
		RedisURL:             envStr("REDIS_URL", "redis://redis:6379/0"),
		LogLevel:             envStr("LOG_LEVEL", "info"),
		GeminiAPIKey:         envStr("GEMINI_API_KEY", ""),
		GeminiModel:          envStr("COACH_MODEL", "gemini-2.0-flash"),
		ImprovementThreshold: envFloat("COACH_IMPROVEMENT_THRESHOLD", 0.7),
		APIToken:             envStr("COACH_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
