package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// LoginRatePerMinute is the sustained number of login attempts allowed per client IP.
	// Zero disables login throttling.
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"30"`

	// LoginBurst is the number of login attempts a client may make back to back.
	LoginBurst int `env:"LOGIN_RATE_BURST" envDefault:"10"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	if h.LoginRatePerMinute < 0 {
		h.LoginRatePerMinute = 0
	}
	if h.LoginRatePerMinute > 0 && h.LoginBurst < 1 {
		h.LoginBurst = 1
	}
}

// LoginThrottleEnabled reports whether login attempts are rate limited.
func (h *HTTPConfig) LoginThrottleEnabled() bool {
	return h.LoginRatePerMinute > 0
}
