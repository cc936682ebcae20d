package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	MongoURI          string
	MongoDatabase     string
	DefaultCollection string
	DIDAPIKey         string
	DIDBaseURL        string
	DIDPresenterID    string
	DIDVoiceID        string
	PollInterval      time.Duration
	PollMaxWait       time.Duration
	AllowedOrigins    []string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "lessons"),
		DefaultCollection: getEnv("DEFAULT_COLLECTION", "subtopics"),
		DIDAPIKey:         os.Getenv("DID_API_KEY"),
		DIDBaseURL:        getEnv("DID_BASE_URL", "https://api.d-id.com"),
		DIDPresenterID:    getEnv("DID_PRESENTER_ID", "amy-jcwCkr1grs"),
		DIDVoiceID:        getEnv("DID_VOICE_ID", "en-US-JennyNeural"),
		PollInterval:      time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)),
		PollMaxWait:       time.Second * time.Duration(getEnvInt("POLL_MAX_WAIT_SECONDS", 180)),
		AllowedOrigins:    splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	// The write timeout must cover a full generation poll budget, otherwise
	// the server cuts the response before the orchestrator finishes.
	if cfg.HTTPWriteTimeout <= cfg.PollMaxWait {
		cfg.HTTPWriteTimeout = cfg.PollMaxWait + 30*time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
