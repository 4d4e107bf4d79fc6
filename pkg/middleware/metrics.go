package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/facturacom/webrouter/pkg/router"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "webrouter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "webrouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Navigation outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeNoMatch = "no_match"
	OutcomeAborted = "aborted"
	OutcomeError   = "error"
)

// unmatchedRoute labels navigations that never reached a route.
const unmatchedRoute = "unmatched"

type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	redirectsTotal     prometheus.Counter
	titleUpdates       *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	reloadsTotal       *prometheus.CounterVec
	activeSockets      prometheus.Gauge
}

// globalMetrics is created by the first call to Prometheus or HTTPMetrics.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total navigations by route and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		redirectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total navigations that followed a redirect rule",
			ConstLabels: config.ConstLabels,
		}),

		titleUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "title_updates_total",
			Help:        "Document title updates by source (meta or default)",
			ConstLabels: config.ConstLabels,
		}, []string{"source"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests by method and status",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),

		reloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_table_reloads_total",
			Help:        "Route table reloads by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		activeSockets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sockets",
			Help:        "Number of open navigation WebSocket connections",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func ensureMetrics(opts []MetricsOption) *metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	return globalMetrics
}

// Prometheus creates a guard that records navigation metrics.
//
// Metrics collected:
//   - webrouter_navigations_total: Counter by route name and outcome
//   - webrouter_navigation_duration_seconds: Histogram by route name
//   - webrouter_redirects_total: Counter of redirected navigations
//   - webrouter_title_updates_total: Counter by title source
//
// Example:
//
//	nav := router.NewNavigator(table,
//	    router.WithGuards(middleware.Prometheus(middleware.WithRegistry(reg))),
//	)
func Prometheus(opts ...MetricsOption) router.Guard {
	m := ensureMetrics(opts)

	return router.GuardFunc(func(ctx context.Context, req *router.NavigationRequest, next router.NextFunc) (*router.Navigation, error) {
		start := time.Now()
		nav, err := next(ctx)
		duration := time.Since(start).Seconds()

		route := unmatchedRoute
		if err == nil && nav != nil && nav.Event.Route != nil {
			route = routeLabel(nav.Event.Route)
		}
		m.navigationDuration.WithLabelValues(route).Observe(duration)
		m.navigationsTotal.WithLabelValues(route, outcome(err)).Inc()

		if err != nil || nav == nil {
			return nav, err
		}
		if nav.Event.Redirected() {
			m.redirectsTotal.Inc()
		}
		m.titleUpdates.WithLabelValues(titleSource(nav)).Inc()
		return nav, nil
	})
}

func routeLabel(def *router.RouteDefinition) string {
	if def.Name() != "" {
		return def.Name()
	}
	return def.Path()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, router.ErrNoMatchingRoute):
		return OutcomeNoMatch
	case errors.Is(err, router.ErrNavigationAborted):
		return OutcomeAborted
	default:
		return OutcomeError
	}
}

func titleSource(nav *router.Navigation) string {
	if nav.Event.Route != nil {
		if _, ok := nav.Event.Route.Title(); ok {
			return "meta"
		}
	}
	return "default"
}

// HTTPMetrics creates HTTP middleware that records request counts and
// durations.
func HTTPMetrics(opts ...MetricsOption) func(http.Handler) http.Handler {
	m := ensureMetrics(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.httpDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
			m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		})
	}
}

// RecordReload records a route table reload attempt.
// result is "success" or "error".
func RecordReload(result string) {
	if m := current(); m != nil {
		m.reloadsTotal.WithLabelValues(result).Inc()
	}
}

// SetActiveSockets sets the number of open navigation sockets.
func SetActiveSockets(n int) {
	if m := current(); m != nil {
		m.activeSockets.Set(float64(n))
	}
}

func current() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

// Collector exposes the initialized metrics.
type Collector struct {
	NavigationsTotal   *prometheus.CounterVec
	NavigationDuration *prometheus.HistogramVec
	RedirectsTotal     prometheus.Counter
	TitleUpdates       *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	ReloadsTotal       *prometheus.CounterVec
	ActiveSockets      prometheus.Gauge
}

// GetMetrics returns the global metrics collector.
// Returns nil if neither Prometheus nor HTTPMetrics has been called.
func GetMetrics() *Collector {
	m := current()
	if m == nil {
		return nil
	}
	return &Collector{
		NavigationsTotal:   m.navigationsTotal,
		NavigationDuration: m.navigationDuration,
		RedirectsTotal:     m.redirectsTotal,
		TitleUpdates:       m.titleUpdates,
		HTTPRequests:       m.httpRequests,
		HTTPDuration:       m.httpDuration,
		ReloadsTotal:       m.reloadsTotal,
		ActiveSockets:      m.activeSockets,
	}
}

// ResetMetrics drops the global metrics so the next call to Prometheus or
// HTTPMetrics registers a fresh set. Intended for tests that use a
// private registry.
func ResetMetrics() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}
