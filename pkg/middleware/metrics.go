package middleware

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	strataerrors "github.com/strataframe/strata/internal/errors"
	"github.com/strataframe/strata/pkg/render"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "strata").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
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
		Namespace: "strata",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for the render pipeline.
type metrics struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
}

var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of rendered requests by route and status",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route", "type"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of render errors by route and category",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "category"}),
	}
}

// Prometheus creates middleware collecting render metrics.
//
// Metrics collected:
//   - strata_renders_total: Counter of renders by route pattern and status
//   - strata_render_duration_seconds: Histogram of render duration
//   - strata_render_errors_total: Counter of render errors by category
//
// Route labels use the declared route pattern, not the concrete request
// path, so dynamic routes stay at one label value each.
//
// Example:
//
//	app.Use(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) render.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(ctx *render.Context, next render.NextFunc) (*render.Response, error) {
		route := routeLabel(ctx)
		routeType := "page"
		if ctx.Route != nil {
			routeType = string(ctx.Route.Type)
		}

		start := time.Now()
		resp, err := next()
		m.renderDuration.WithLabelValues(route, routeType).Observe(time.Since(start).Seconds())

		if err != nil {
			m.renderErrors.WithLabelValues(route, errorCategory(err)).Inc()
			m.rendersTotal.WithLabelValues(route, "error").Inc()
			return resp, err
		}

		status := "0"
		if resp != nil {
			status = strconv.Itoa(resp.Status())
		}
		m.rendersTotal.WithLabelValues(route, status).Inc()
		return resp, nil
	}
}

// errorCategory maps an error to a low-cardinality label value.
func errorCategory(err error) string {
	var se *strataerrors.StrataError
	if errors.As(err, &se) && se.Category != "" {
		return string(se.Category)
	}
	return "internal"
}
