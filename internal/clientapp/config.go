package clientapp

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

type Config struct {
	Addr         string
	APIBaseURL   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SessionDBPath string
	SessionDSN    string
	CookieSecure  bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	// Overrides for the Google endpoints; empty means the real ones.
	GoogleAuthURL  string
	GoogleTokenURL string

	LogRequests bool
}

func DefaultConfigFromEnv() Config {
	return Config{
		Addr:               envOrDefault("CONSOLE_ADDR", ":3000"),
		APIBaseURL:         envOrDefault("API_BASE_URL", backend.DefaultBaseURL),
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       30 * time.Second,
		SessionSecret:      envOrDefault("SESSION_SECRET", ""),
		SessionTTL:         envDuration("SESSION_TTL", 12*time.Hour),
		SessionDBPath:      envOrDefault("SESSION_DB_PATH", "data/sessions.db"),
		SessionDSN:         envOrDefault("SESSION_DB_DSN", ""),
		CookieSecure:       envBool("COOKIE_SECURE", false),
		GoogleClientID:     envOrDefault("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envOrDefault("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  envOrDefault("GOOGLE_REDIRECT_URL", "http://localhost:3000/auth/google/callback"),
		LogRequests:        envBool("CONSOLE_LOG_REQUESTS", true),
	}
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(envOrDefault(name, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envBool(name string, fallback bool) bool {
	v, err := strconv.ParseBool(envOrDefault(name, ""))
	if err != nil {
		return fallback
	}
	return v
}
