package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Identity IdentityServiceInterface
	// Optional: throttles POST /auth/login when set.
	LoginLimiter *LoginRateLimiter
	// Optional: served at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	// Optional: dependency checks for GET /readyz.
	Readiness []ReadinessCheck
	Logger    *slog.Logger // Logger for HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Identity, Logger: logger}
	registerAuthRoutes(mux, authHandlers, services.LoginLimiter)
	registerAdminRoutes(mux, services.Identity)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Readiness, logger))

	if services.Metrics != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.Metrics)
	}

	return Recover(logger)(Logging(logger)(mux))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, limiter *LoginRateLimiter) {
	var login http.Handler = http.HandlerFunc(h.Login)
	if limiter != nil {
		login = limiter.Middleware()(login)
	}

	mux.Handle("POST /auth/register", http.HandlerFunc(h.Register))
	mux.Handle("POST /auth/login", login)
	mux.Handle("GET /auth/me", RequireAuth(h.Svc)(http.HandlerFunc(h.Me)))
}

func registerAdminRoutes(mux *http.ServeMux, authn Authenticator) {
	mux.Handle("GET /admin/ping", RequireAuthority(authn, domainauth.AuthorityAdmin)(http.HandlerFunc(adminPing)))
}
