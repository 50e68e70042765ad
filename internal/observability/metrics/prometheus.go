package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Sink = (*AuthCollector)(nil)

// AuthCollector records identity operation outcomes as Prometheus metrics.
// It is safe for concurrent use.
type AuthCollector struct {
	outcomes    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	rateLimited prometheus.Counter
}

// NewAuthCollector creates an AuthCollector and registers its metrics with reg.
func NewAuthCollector(reg prometheus.Registerer) *AuthCollector {
	c := &AuthCollector{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vanvan_auth_outcomes_total",
			Help: "Identity operations by operation, result and error class.",
		}, []string{"operation", "result", "error_class"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vanvan_auth_duration_seconds",
			Help:    "Identity operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vanvan_auth_login_rate_limited_total",
			Help: "Login attempts rejected by the per-client rate limiter.",
		}),
	}

	reg.MustRegister(c.outcomes, c.durations, c.rateLimited)
	return c
}

// Count implements Sink. Only NameAuthOutcome is recorded.
func (c *AuthCollector) Count(name string, value int64, tags map[string]string) {
	if name != NameAuthOutcome || value <= 0 {
		return
	}
	c.outcomes.WithLabelValues(tags["operation"], tags["result"], tags["error_class"]).Add(float64(value))
}

// Timing implements Sink. Only NameAuthDuration is recorded.
func (c *AuthCollector) Timing(name string, value time.Duration, tags map[string]string) {
	if name != NameAuthDuration {
		return
	}
	c.durations.WithLabelValues(tags["operation"], tags["result"]).Observe(value.Seconds())
}

// RecordRateLimited counts a login attempt refused by the rate limiter.
func (c *AuthCollector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler returns the HTTP handler serving gatherer in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
