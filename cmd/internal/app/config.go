package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// CORS origin for browser consumers; "*" allows all.
	CORSOrigin string

	// API key auth; either a plaintext key or an Argon2id hash. Empty
	// disables the check.
	APIKey     string
	APIKeyHash string

	// Automation agent endpoint (one WebSocket session channel per device).
	AgentURL            string
	AgentWriteTimeout   time.Duration
	AgentCommandTimeout time.Duration

	// Webhook collector. Disabled by default.
	WebhookURL     string
	WebhookEnabled bool
	WebhookTimeout time.Duration

	// Timezone for user-visible timestamps.
	Timezone string

	// Session storage root and reclaim tuning.
	SessionRoot     string
	ReclaimAttempts int
	ReclaimDelay    time.Duration

	// Lifecycle bounds and policies.
	InitTimeout       time.Duration
	TeardownTimeout   time.Duration
	CreateAnswerGrace time.Duration
	ExecuteEnabled    bool
	RemoveOnTerminal  bool

	// Optional Postgres archive for inbound messages. Empty keeps the
	// in-memory buffer.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("EXPLORE_HTTP_ADDR", "0.0.0.0:3000"),
		LogLevel: EnvString("EXPLORE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("EXPLORE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("EXPLORE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("EXPLORE_HTTP_WRITE_TIMEOUT", 3*time.Minute),
		IdleTimeout:       EnvDuration("EXPLORE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("EXPLORE_HTTP_MAX_HEADER_BYTES", 1<<20),

		CORSOrigin: EnvString("EXPLORE_ORIGIN", "*"),

		APIKey:     EnvString("EXPLORE_API_KEY", ""),
		APIKeyHash: EnvString("EXPLORE_API_KEY_HASH", ""),

		AgentURL:            EnvString("EXPLORE_AGENT_URL", "ws://127.0.0.1:3001/session"),
		AgentWriteTimeout:   EnvDuration("EXPLORE_AGENT_WRITE_TIMEOUT", 5*time.Second),
		AgentCommandTimeout: EnvDuration("EXPLORE_AGENT_COMMAND_TIMEOUT", 30*time.Second),

		WebhookURL:     EnvString("EXPLORE_WEBHOOK_URL", "http://127.0.0.1:8000/"),
		WebhookEnabled: EnvBool("EXPLORE_WEBHOOK_ENABLED", false),
		WebhookTimeout: EnvDuration("EXPLORE_WEBHOOK_TIMEOUT", 10*time.Second),

		Timezone: EnvString("EXPLORE_TIMEZONE", ""),

		SessionRoot:     EnvString("EXPLORE_SESSION_ROOT", ".wwebjs_auth"),
		ReclaimAttempts: EnvInt("EXPLORE_RECLAIM_ATTEMPTS", 10),
		ReclaimDelay:    EnvDuration("EXPLORE_RECLAIM_DELAY", 2*time.Second),

		InitTimeout:       EnvDuration("EXPLORE_INIT_TIMEOUT", 2*time.Minute),
		TeardownTimeout:   EnvDuration("EXPLORE_TEARDOWN_TIMEOUT", 60*time.Second),
		CreateAnswerGrace: EnvDuration("EXPLORE_CREATE_ANSWER_GRACE", 2*time.Second),
		ExecuteEnabled:    EnvBool("EXPLORE_EXECUTE_ENABLED", false),
		RemoveOnTerminal:  EnvBool("EXPLORE_REMOVE_ON_TERMINAL", false),

		DatabaseURL: EnvString("EXPLORE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("EXPLORE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("EXPLORE_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("EXPLORE_READINESS_REQUIRE_DB", false),
	}
}

// EnvString reads a string env var with a default.
func EnvString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// EnvBool reads a bool env var with a default.
func EnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvInt reads a positive int env var with a default.
func EnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// EnvInt32 reads a non-negative int32 env var with a default.
func EnvInt32(key string, def int32) int32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return def
	}
	return int32(n)
}

// EnvDuration reads a duration env var with a default.
func EnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
