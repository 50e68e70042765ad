package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/vanvan/vanvan-auth/config"
	httpx "github.com/vanvan/vanvan-auth/internal/http"
	"github.com/vanvan/vanvan-auth/internal/observability/metrics"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Identity httpx.IdentityServiceInterface
	// Optional: exposes Gatherer and counts rate limited logins.
	Collector *metrics.AuthCollector
	Gatherer  prometheus.Gatherer
	// Optional: readiness checks.
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the HTTP server plus resources it must release on shutdown.
type HTTPServer struct {
	Server  *http.Server
	limiter *httpx.LoginRateLimiter
}

// NewHTTPServer builds the HTTP server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) (*HTTPServer, error) {
	if cfg == nil || cfg.Identity == nil {
		return nil, errors.New("http server requires an identity service")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Identity:  cfg.Identity,
		Readiness: readinessChecks(cfg.DB, cfg.RedisClient),
		Logger:    logger,
	}

	var limiter *httpx.LoginRateLimiter
	if appCfg.HTTP.LoginThrottleEnabled() {
		limiterCfg := httpx.LoginRateLimiterConfig{
			Rate:   httpx.PerMinute(appCfg.HTTP.LoginRatePerMinute),
			Burst:  appCfg.HTTP.LoginBurst,
			Logger: logger,
		}
		if cfg.Collector != nil {
			limiterCfg.OnLimited = cfg.Collector.RecordRateLimited
		}
		limiter = httpx.NewLoginRateLimiter(limiterCfg)
		services.LoginLimiter = limiter
	}

	if appCfg.Observability.Metrics.Enabled && cfg.Gatherer != nil {
		services.Metrics = metrics.Handler(cfg.Gatherer)
		services.MetricsPath = appCfg.Observability.Metrics.Path
	}

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &HTTPServer{
		Server: &http.Server{
			Addr:              addr,
			Handler:           httpx.NewRouter(services),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		limiter: limiter,
	}, nil
}

// Shutdown gracefully stops the server and its login limiter.
func (s *HTTPServer) Shutdown(ctx context.Context, timeout time.Duration) error {
	if s == nil || s.Server == nil {
		return nil
	}
	if s.limiter != nil {
		defer s.limiter.Stop()
	}
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Server.Shutdown(shutdownCtx)
}

func readinessChecks(db *sql.DB, rdb redis.UniversalClient) []httpx.ReadinessCheck {
	var checks []httpx.ReadinessCheck
	if db != nil {
		checks = append(checks, httpx.ReadinessCheck{Name: "postgres", Check: db.PingContext})
	}
	if rdb != nil {
		checks = append(checks, httpx.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
