package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/vanvan/vanvan-auth/config"
	"github.com/vanvan/vanvan-auth/internal/observability/metrics"
	"golang.org/x/sync/errgroup"
)

// RunConfig contains the dependencies of a running service process.
type RunConfig struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Listener overrides Config.HTTP.Addr (used by tests).
	Listener net.Listener
}

// Run serves HTTP until ctx is canceled or the server fails, then shuts down gracefully.
func Run(ctx context.Context, cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("run config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewAuthCollector(registry)

	identity, err := BuildIdentityService(ctx, IdentityConfig{
		Auth:        cfg.Config.Auth,
		DB:          cfg.DB,
		RedisClient: cfg.RedisClient,
		Metrics:     collector,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build identity service: %w", err)
	}

	srv, err := NewHTTPServer(&HTTPServerConfig{
		Config:      cfg.Config,
		Identity:    identity,
		Collector:   collector,
		Gatherer:    registry,
		DB:          cfg.DB,
		RedisClient: cfg.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var serveErr error
		if cfg.Listener != nil {
			logger.InfoContext(gctx, "starting HTTP server", "addr", cfg.Listener.Addr().String())
			serveErr = srv.Server.Serve(cfg.Listener)
		} else {
			logger.InfoContext(gctx, "starting HTTP server", "addr", srv.Server.Addr)
			serveErr = srv.Server.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveErr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		// The parent context is already done here; shutdown gets its own deadline.
		if shutdownErr := srv.Shutdown(context.WithoutCancel(gctx), cfg.Config.HTTP.ShutdownTimeout); shutdownErr != nil {
			return fmt.Errorf("shutdown http server: %w", shutdownErr)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
