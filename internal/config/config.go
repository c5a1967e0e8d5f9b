package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string
	JWTSecret   string

	// Gateway simulator knobs.
	GatewayLatency      time.Duration
	CollectFailureRate  float64
	DisburseFailureRate float64

	AllowedOrigins []string
}

// Load reads configuration from the environment, after loading .env if
// one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	latency, err := durationEnv("GATEWAY_LATENCY", 1500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	collectRate, err := rateEnv("GATEWAY_COLLECT_FAILURE_RATE", 0.10)
	if err != nil {
		return nil, err
	}
	disburseRate, err := rateEnv("GATEWAY_DISBURSE_FAILURE_RATE", 0.05)
	if err != nil {
		return nil, err
	}

	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	return &Config{
		DatabaseURL:         dbURL,
		Port:                port,
		Env:                 env,
		JWTSecret:           secret,
		GatewayLatency:      latency,
		CollectFailureRate:  collectRate,
		DisburseFailureRate: disburseRate,
		AllowedOrigins:      origins,
	}, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func rateEnv(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%s must be between 0 and 1", key)
	}
	return f, nil
}
