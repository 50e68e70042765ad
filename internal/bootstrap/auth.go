package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/vanvan/vanvan-auth/config"
	"github.com/vanvan/vanvan-auth/internal/adapters/authroles"
	"github.com/vanvan/vanvan-auth/internal/adapters/hasher"
	redisadapter "github.com/vanvan/vanvan-auth/internal/adapters/redis"
	"github.com/vanvan/vanvan-auth/internal/adapters/tokens"
	"github.com/vanvan/vanvan-auth/internal/data"
	"github.com/vanvan/vanvan-auth/internal/observability/metrics"
	"github.com/vanvan/vanvan-auth/internal/ports"
	"github.com/vanvan/vanvan-auth/internal/service"
)

// IdentityConfig contains configuration for the identity service.
type IdentityConfig struct {
	Auth        config.AuthConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Metrics     metrics.Sink
	Logger      *slog.Logger
}

// BuildIdentityService wires the identity service onto the configured store,
// a bcrypt hasher and an HS256 token issuer. The dummy comparison hash is
// computed before the service is returned.
func BuildIdentityService(ctx context.Context, cfg IdentityConfig) (*service.IdentityService, error) {
	store, err := newIdentityStore(cfg)
	if err != nil {
		return nil, err
	}

	bc, err := hasher.NewBcrypt(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("create hasher: %w", err)
	}

	issuer, err := tokens.NewIssuer(tokens.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("create token issuer: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("identity service configured",
			"store", cfg.Auth.Store,
			"bcrypt_cost", bc.Cost(),
			"token_ttl", cfg.Auth.TokenTTL)
	}

	svc := service.NewIdentityService(service.IdentityServiceOptions{
		Store:       store,
		Hasher:      bc,
		Tokens:      issuer,
		Verifier:    issuer,
		Authorities: authroles.StaticAuthorityMapper{},
		TokenTTL:    cfg.Auth.TokenTTL,
		Logger:      cfg.Logger,
		Metrics:     cfg.Metrics,
	})
	if err := svc.PrepareDummyHash(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

//nolint:ireturn // the concrete store is chosen from configuration.
func newIdentityStore(cfg IdentityConfig) (ports.IdentityStore, error) {
	switch cfg.Auth.Store {
	case config.IdentityStoreRedis:
		if cfg.RedisClient == nil {
			return nil, errors.New("identity store redis: redis client not configured")
		}
		return redisadapter.NewIdentityStoreWithPrefix(cfg.RedisClient, cfg.Auth.RedisKeyPrefix), nil
	case config.IdentityStorePostgres, "":
		if cfg.DB == nil {
			return nil, errors.New("identity store postgres: database not configured")
		}
		return data.NewIdentityRepo(cfg.DB), nil
	default:
		return nil, fmt.Errorf("unknown identity store %q", cfg.Auth.Store)
	}
}
