package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:3000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SessionRoot != ".wwebjs_auth" {
		t.Fatalf("SessionRoot = %q", cfg.SessionRoot)
	}
	if cfg.ReclaimAttempts != 10 {
		t.Fatalf("ReclaimAttempts = %d", cfg.ReclaimAttempts)
	}
	if cfg.ReclaimDelay != 2*time.Second {
		t.Fatalf("ReclaimDelay = %v", cfg.ReclaimDelay)
	}
	if cfg.WebhookEnabled {
		t.Fatal("webhook must be disabled by default")
	}
	if cfg.ExecuteEnabled {
		t.Fatal("execute dispatch must be disabled by default")
	}
	if cfg.RemoveOnTerminal {
		t.Fatal("terminal entries must be kept by default")
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("EXPLORE_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("EXPLORE_SESSION_ROOT", "/var/lib/explore/sessions")
	t.Setenv("EXPLORE_RECLAIM_ATTEMPTS", "3")
	t.Setenv("EXPLORE_RECLAIM_DELAY", "500ms")
	t.Setenv("EXPLORE_WEBHOOK_ENABLED", "true")
	t.Setenv("EXPLORE_EXECUTE_ENABLED", "1")
	t.Setenv("EXPLORE_TIMEZONE", "UTC")
	t.Setenv("EXPLORE_DB_MAX_CONNS", "25")

	cfg := LoadConfig()

	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SessionRoot != "/var/lib/explore/sessions" {
		t.Fatalf("SessionRoot = %q", cfg.SessionRoot)
	}
	if cfg.ReclaimAttempts != 3 {
		t.Fatalf("ReclaimAttempts = %d", cfg.ReclaimAttempts)
	}
	if cfg.ReclaimDelay != 500*time.Millisecond {
		t.Fatalf("ReclaimDelay = %v", cfg.ReclaimDelay)
	}
	if !cfg.WebhookEnabled || !cfg.ExecuteEnabled {
		t.Fatal("boolean overrides not applied")
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("Timezone = %q", cfg.Timezone)
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("DBMaxConns = %d", cfg.DBMaxConns)
	}
}

func TestEnvHelpersRejectGarbage(t *testing.T) {
	t.Setenv("EXPLORE_TEST_INT", "not-a-number")
	t.Setenv("EXPLORE_TEST_NEG", "-5")
	t.Setenv("EXPLORE_TEST_DUR", "soon")
	t.Setenv("EXPLORE_TEST_BOOL", "maybe")

	if got := EnvInt("EXPLORE_TEST_INT", 7); got != 7 {
		t.Fatalf("EnvInt = %d, want default 7", got)
	}
	if got := EnvInt("EXPLORE_TEST_NEG", 7); got != 7 {
		t.Fatalf("EnvInt negative = %d, want default 7", got)
	}
	if got := EnvDuration("EXPLORE_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration = %v, want default 1m", got)
	}
	if got := EnvBool("EXPLORE_TEST_BOOL", true); got != true {
		t.Fatalf("EnvBool = %v, want default true", got)
	}
	if got := EnvString("EXPLORE_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("EnvString = %q", got)
	}
}
