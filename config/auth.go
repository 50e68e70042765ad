package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// IdentityStoreKind selects the backing store for identity records.
type IdentityStoreKind string

const (
	// IdentityStorePostgres keeps identities in the identities/driver_profiles tables.
	IdentityStorePostgres IdentityStoreKind = "postgres"
	// IdentityStoreRedis keeps identities as JSON string values guarded by unique index keys.
	IdentityStoreRedis IdentityStoreKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for IdentityStoreKind.
func (k *IdentityStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "redis":
		*k = IdentityStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid IdentityStoreKind: %q (valid options: postgres, redis)", v)
	}
}

const (
	minTokenTTL     = time.Minute
	defaultTokenTTL = 24 * time.Hour
)

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// JWTSecret is the HMAC key used to sign session tokens.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// JWTIssuer is written to the iss claim and enforced on parse.
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"vanvan"`

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// BcryptCost is the work factor for credential hashing.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Store selects where identity records live.
	Store IdentityStoreKind `env:"IDENTITY_STORE" envDefault:"postgres"`

	// RedisKeyPrefix namespaces identity keys when Store=redis.
	RedisKeyPrefix string `env:"IDENTITY_REDIS_PREFIX" envDefault:"identity:"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	// Tokens must expire strictly after issuance.
	if a.TokenTTL < minTokenTTL {
		a.TokenTTL = defaultTokenTTL
	}
	if a.BcryptCost < bcrypt.MinCost {
		a.BcryptCost = bcrypt.DefaultCost
	}
	if a.BcryptCost > bcrypt.MaxCost {
		a.BcryptCost = bcrypt.MaxCost
	}
	if a.Store == "" {
		a.Store = IdentityStorePostgres
	}
	a.JWTIssuer = strings.TrimSpace(a.JWTIssuer)
	if a.RedisKeyPrefix == "" {
		a.RedisKeyPrefix = "identity:"
	}
}
