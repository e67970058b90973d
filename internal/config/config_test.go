package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CORS_ORIGINS", "JWT_ALGORITHM", "STORAGE_BACKEND", "DB_NAME", "S3_REGION", "LOCK_TTL_SECONDS", "API_RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected default cors origins [*], got %v", cfg.CORSOrigins)
	}
	if cfg.JWTAlgorithm != "HS256" {
		t.Fatalf("expected default jwt algorithm HS256, got %q", cfg.JWTAlgorithm)
	}
	if cfg.StorageBackend != "postgres" {
		t.Fatalf("expected default storage backend postgres, got %q", cfg.StorageBackend)
	}
	if cfg.DBName != "simplycomply" {
		t.Fatalf("expected default schema simplycomply, got %q", cfg.DBName)
	}
	if cfg.S3Region != "auto" {
		t.Fatalf("expected default s3 region auto, got %q", cfg.S3Region)
	}
	if cfg.LockTTLSeconds != 15 {
		t.Fatalf("expected default lock ttl 15, got %d", cfg.LockTTLSeconds)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected rate limit disabled by default, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com ,")
	t.Setenv("STORAGE_BACKEND", "MEMORY")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("JWT_EXPIRATION_HOURS", "not-a-number")
	t.Setenv("RESILIENCE_BREAKER_ENABLED", "false")

	cfg := Load()
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("expected storage backend memory, got %q", cfg.StorageBackend)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.JWTExpirationHours != 24 {
		t.Fatalf("expected fallback jwt expiration 24, got %d", cfg.JWTExpirationHours)
	}
	if cfg.ResilienceBreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}
