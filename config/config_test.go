package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-signing-key")
	t.Setenv("JWT_ISSUER", "vanvan-test")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("IDENTITY_STORE", "REDIS")
	t.Setenv("IDENTITY_REDIS_PREFIX", "id:")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		JWTSecret:      "test-signing-key",
		JWTIssuer:      "vanvan-test",
		TokenTTL:       2 * time.Hour,
		BcryptCost:     12,
		Store:          IdentityStoreRedis,
		RedisKeyPrefix: "id:",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if !cfg.UsesRedis() || cfg.UsesPostgres() {
		t.Fatalf("expected redis store to be selected")
	}
}

func TestAppConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatalf("expected error when JWT_SECRET is empty")
	}
}

func TestIdentityStoreKind_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    IdentityStoreKind
		wantErr bool
	}{
		{input: "postgres", want: IdentityStorePostgres},
		{input: " Redis ", want: IdentityStoreRedis},
		{input: "mysql", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var k IdentityStoreKind
			err := k.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if k != tt.want {
				t.Fatalf("got %q, want %q", k, tt.want)
			}
		})
	}
}

func TestAuthConfig_Sanitize(t *testing.T) {
	cfg := AuthConfig{
		TokenTTL:   0,
		BcryptCost: 1,
		JWTIssuer:  "  vanvan ",
	}

	cfg.Sanitize()

	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected default TTL, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected default cost, got %d", cfg.BcryptCost)
	}
	if cfg.Store != IdentityStorePostgres {
		t.Fatalf("expected postgres store by default, got %q", cfg.Store)
	}
	if cfg.JWTIssuer != "vanvan" {
		t.Fatalf("expected issuer to be trimmed, got %q", cfg.JWTIssuer)
	}

	cfg = AuthConfig{TokenTTL: time.Hour, BcryptCost: 99}
	cfg.Sanitize()
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected TTL to be kept, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 31 {
		t.Fatalf("expected cost clamped to 31, got %d", cfg.BcryptCost)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{LoginRatePerMinute: -5, LoginBurst: 0}
	cfg.Sanitize()

	if cfg.LoginThrottleEnabled() {
		t.Fatalf("expected throttling disabled for negative rate")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %s", cfg.ShutdownTimeout)
	}

	cfg = HTTPConfig{LoginRatePerMinute: 10, LoginBurst: 0}
	cfg.Sanitize()
	if !cfg.LoginThrottleEnabled() || cfg.LoginBurst != 1 {
		t.Fatalf("expected burst raised to 1, got %d", cfg.LoginBurst)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, Path: " "}
	cfg.Sanitize()
	if cfg.Path != "/metrics" {
		t.Fatalf("expected default path, got %q", cfg.Path)
	}

	cfg = ObservabilityMetricsConfig{Enabled: true, Path: "internal/metrics"}
	cfg.Sanitize()
	if cfg.Path != "/internal/metrics" {
		t.Fatalf("expected leading slash, got %q", cfg.Path)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	cfg := AppConfig{}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Fatalf("expected dev mode from NODE_ENV")
	}
}
