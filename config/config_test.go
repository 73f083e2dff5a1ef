package config

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func loadFromEnv() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func TestDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg := loadFromEnv()

	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if len(cfg.JWTSecret) != 32 {
		t.Errorf("expected generated 32-byte secret, got %d bytes", len(cfg.JWTSecret))
	}
	if cfg.PublicPageSize != 20 || cfg.AdminPageSize != 50 || cfg.ListMaxLimit != 200 {
		t.Errorf("page sizes = %d/%d/%d", cfg.PublicPageSize, cfg.AdminPageSize, cfg.ListMaxLimit)
	}
	if cfg.StrictTransitions {
		t.Error("transitions should be unrestricted by default")
	}
	if cfg.IssueRateLimit != 0 {
		t.Errorf("rate limit should be disabled by default, got %d", cfg.IssueRateLimit)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("STRICT_TRANSITIONS", "true")
	t.Setenv("ISSUE_RATE_WINDOW", "90m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	cfg := loadFromEnv()

	if string(cfg.JWTSecret) != "s3cret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if !cfg.StrictTransitions {
		t.Error("StrictTransitions not read from env")
	}
	if cfg.IssueRateWindow != 90*time.Minute {
		t.Errorf("IssueRateWindow = %v", cfg.IssueRateWindow)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %q", cfg.CORSOrigins)
	}
}

func TestNonPositiveSizesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PUBLIC_PAGE_SIZE", "0")
	t.Setenv("ADMIN_PAGE_SIZE", "-5")
	t.Setenv("LIST_MAX_LIMIT", "0")
	cfg := loadFromEnv()

	if cfg.PublicPageSize != 20 || cfg.AdminPageSize != 50 || cfg.ListMaxLimit != 200 {
		t.Errorf("page sizes = %d/%d/%d, want 20/50/200", cfg.PublicPageSize, cfg.AdminPageSize, cfg.ListMaxLimit)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{DBDriver: "oracle"}
	if _, err := OpenStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestConnectRedisDisabled(t *testing.T) {
	client, err := ConnectRedis(context.Background(), &Config{})
	if err != nil || client != nil {
		t.Fatalf("ConnectRedis without address = %v, %v", client, err)
	}
}
