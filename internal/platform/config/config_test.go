package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("RateLimitWindow = %v", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 100 {
		t.Errorf("RateLimitMax = %d", cfg.RateLimitMax)
	}
	if cfg.CacheTTL != 604800*time.Second {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.CodeLength != 6 {
		t.Errorf("CodeLength = %d", cfg.CodeLength)
	}
	if cfg.CodeMaxRetries != 10 {
		t.Errorf("CodeMaxRetries = %d", cfg.CodeMaxRetries)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")
	t.Setenv("CACHE_TTL", "24h")
	t.Setenv("SHORT_CODE_LENGTH", "8")
	t.Setenv("CODE_MAX_RETRIES", "3")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 5 {
		t.Errorf("RateLimitMax = %d", cfg.RateLimitMax)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.CodeLength != 8 {
		t.Errorf("CodeLength = %d", cfg.CodeLength)
	}
	if cfg.CodeMaxRetries != 3 {
		t.Errorf("CodeMaxRetries = %d", cfg.CodeMaxRetries)
	}
	if !cfg.KafkaEnabled {
		t.Error("KafkaEnabled should be true")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "-1")
	t.Setenv("SHORT_CODE_LENGTH", "zero")

	cfg := Load()

	if cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("bad window should keep default, got %v", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 100 {
		t.Errorf("bad max should keep default, got %d", cfg.RateLimitMax)
	}
	if cfg.CodeLength != 6 {
		t.Errorf("bad length should keep default, got %d", cfg.CodeLength)
	}
}
