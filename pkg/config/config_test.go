package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "JWT_EXPIRATION", "RATE_LIMIT_CAPACITY", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
	}
	if cfg.JWTExpiration != 24*time.Hour {
		t.Fatalf("expected 24h token expiry, got %s", cfg.JWTExpiration)
	}
	if cfg.RateLimit.Capacity != 60 {
		t.Fatalf("expected capacity 60, got %d", cfg.RateLimit.Capacity)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_EXPIRATION", "18000000")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected lowercased driver, got %q", cfg.DBDriver)
	}
	if cfg.JWTExpiration != 5*time.Hour {
		t.Fatalf("expected millisecond expiry to parse as 5h, got %s", cfg.JWTExpiration)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("expected rate limiting disabled")
	}
	if cfg.RateLimit.Capacity != 1 {
		t.Fatalf("expected capacity clamped to 1, got %d", cfg.RateLimit.Capacity)
	}
	if cfg.RateLimit.TTL != 5*time.Minute {
		t.Fatalf("expected ttl raised to 5 refill intervals, got %s", cfg.RateLimit.TTL)
	}
}

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	var one int
	if err := db.Raw("SELECT 1").Scan(&one).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if one != 1 {
		t.Fatalf("expected 1, got %d", one)
	}
}
