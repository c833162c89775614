// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/api and cmd/alertctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Dedup backends for the server-side occurrence retention map.
const (
	DedupMemory = "memory"
	DedupRedis  = "redis"
)

// --------------------------------------------------------------------------
// Server config
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Alert pipeline
	TickInterval        time.Duration
	MedicineAlertTTL    time.Duration
	AppointmentAlertTTL time.Duration
	EvictInterval       time.Duration

	// Dedup backend
	DedupBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Push
	SNSRegion string

	MetricsEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	secret := envOr("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   envSeconds("RATE_LIMIT_WINDOW", 60*time.Second),

		JWTSecret: secret,
		JWTTTL:    time.Duration(envInt("JWT_TTL_HOURS", 24)) * time.Hour,

		TickInterval:        envSeconds("ALERT_TICK_INTERVAL_SECONDS", 60*time.Second),
		MedicineAlertTTL:    envSeconds("MEDICINE_ALERT_TTL_SECONDS", 5*time.Minute),
		AppointmentAlertTTL: envSeconds("APPOINTMENT_ALERT_TTL_SECONDS", 5*time.Minute),
		EvictInterval:       envSeconds("ALERT_EVICT_INTERVAL_SECONDS", 60*time.Second),

		DedupBackend:  strings.ToLower(envOr("DEDUP_BACKEND", DedupMemory)),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envOr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		SNSRegion: envOr("SNS_REGION", ""),

		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("ALERT_TICK_INTERVAL_SECONDS must be positive")
	}
	// A medicine occurrence must outlive one tick or the next tick inside
	// the same minute would emit it again.
	if c.MedicineAlertTTL < c.TickInterval {
		return fmt.Errorf("MEDICINE_ALERT_TTL_SECONDS (%s) must be >= tick interval (%s)",
			c.MedicineAlertTTL, c.TickInterval)
	}
	if c.AppointmentAlertTTL <= 0 {
		return fmt.Errorf("APPOINTMENT_ALERT_TTL_SECONDS must be positive")
	}
	if c.DedupBackend != DedupMemory && c.DedupBackend != DedupRedis {
		return fmt.Errorf("DEDUP_BACKEND must be %q or %q, got %q", DedupMemory, DedupRedis, c.DedupBackend)
	}
	return nil
}

// LoadAuth reads only the token settings, for tools that mint tokens
// without touching the database.
func LoadAuth() (secret string, ttl time.Duration, err error) {
	secret = envOr("JWT_SECRET", "")
	if secret == "" {
		return "", 0, fmt.Errorf("JWT_SECRET must be set")
	}
	return secret, time.Duration(envInt("JWT_TTL_HOURS", 24)) * time.Hour, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Watch client config
// --------------------------------------------------------------------------

// ClientConfig configures the polling client run by `alertctl watch`.
type ClientConfig struct {
	ServerURL    string
	Token        string
	PollInterval time.Duration
	ShownTTL     time.Duration
	SessionFile  string
	Desktop      bool
	DismissAfter time.Duration
}

// LoadClient reads the watch client configuration.
func LoadClient() *ClientConfig {
	return &ClientConfig{
		ServerURL:    strings.TrimRight(envOr("WATCH_SERVER_URL", "http://localhost:8000"), "/"),
		Token:        envOr("WATCH_TOKEN", ""),
		PollInterval: envSeconds("WATCH_POLL_INTERVAL_SECONDS", 60*time.Second),
		ShownTTL:     envSeconds("WATCH_SHOWN_TTL_SECONDS", 6*time.Minute),
		SessionFile:  envOr("WATCH_SESSION_FILE", defaultSessionFile()),
		Desktop:      envBool("WATCH_DESKTOP", false),
		DismissAfter: envSeconds("WATCH_DISMISS_SECONDS", 20*time.Second),
	}
}

func defaultSessionFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "meditrack", "shown_alerts.json")
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
