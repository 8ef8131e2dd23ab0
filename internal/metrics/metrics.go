package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leadgenius",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgenius",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	webhookAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgenius",
			Subsystem: "webhook",
			Name:      "attempts_total",
			Help:      "Outbound webhook attempts by kind, verb and outcome.",
		},
		[]string{"kind", "method", "outcome"},
	)

	enrichmentFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgenius",
			Subsystem: "enrichment",
			Name:      "fallbacks_total",
			Help:      "Enrichment results served from a fallback source.",
		},
		[]string{"operation", "source"},
	)
)

// Register adds the collectors to the default registry once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, webhookAttempts, enrichmentFallbacks)
	})
}

// EchoMiddleware records request latency and counts per route template.
func EchoMiddleware() echo.MiddlewareFunc {
	Register()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			requestTotal.WithLabelValues(labels...).Inc()
			return err
		}
	}
}

// Handler exposes the default registry.
func Handler() echo.HandlerFunc {
	Register()
	return echo.WrapHandler(promhttp.Handler())
}

// ObserveWebhookAttempt counts a single webhook attempt.
func ObserveWebhookAttempt(kind, method, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	webhookAttempts.WithLabelValues(kind, method, outcome).Inc()
}

// ObserveFallback counts an enrichment served from a non-webhook source.
func ObserveFallback(operation, source string) {
	enrichmentFallbacks.WithLabelValues(operation, source).Inc()
}
