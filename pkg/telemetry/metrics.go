package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/sigstore/pkg/host"
	"github.com/vango-dev/sigstore/pkg/sigstore"
)

// MetricsConfig configures the collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sigstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry registers the collectors.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Gatherer is served by Handler.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

// MetricsOption configures Metrics.
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

// WithRegistry registers the collectors on reg and serves reg from Handler.
func WithRegistry(reg *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = reg
		c.Gatherer = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "sigstore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
		Gatherer:  prometheus.DefaultGatherer,
	}
}

// opts names a collector inside the configured namespace.
func (c MetricsConfig) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.ConstLabels,
	}
}

// Metrics holds the Prometheus collectors. It is safe for concurrent use
// by every session of a server.
type Metrics struct {
	rendersTotal        *prometheus.CounterVec
	unmountsTotal       *prometheus.CounterVec
	rerenderRequests    *prometheus.CounterVec
	subscriptionsActive prometheus.Gauge
	subscriptionsTotal  prometheus.Counter
	subscriptionCells   prometheus.Histogram
	scopesActive        *prometheus.GaugeVec
	sessionsActive      prometheus.Gauge
	actionsTotal        *prometheus.CounterVec
	flushDuration       prometheus.Histogram

	gatherer prometheus.Gatherer
}

var (
	_ host.Observer     = (*Metrics)(nil)
	_ sigstore.Observer = (*Metrics)(nil)
)

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - sigstore_renders_total: Counter of component renders by component
//   - sigstore_unmounts_total: Counter of component unmounts by component
//   - sigstore_rerender_requests_total: Counter of subscription firings by component
//   - sigstore_subscriptions_active: Gauge of live subscriptions
//   - sigstore_subscriptions_established_total: Counter of subscriptions established
//   - sigstore_subscription_cells: Histogram of cells per subscription
//   - sigstore_scopes_active: Gauge of active store scopes by store
//   - sigstore_sessions_active: Gauge of connected live sessions
//   - sigstore_actions_total: Counter of dispatched actions by action and status
//   - sigstore_flush_duration_seconds: Histogram of tree flush duration
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts(config.opts(name, help)), labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts(config.opts(name, help)))
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		o := config.opts(name, help)
		return factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   o.Namespace,
			Subsystem:   o.Subsystem,
			Name:        o.Name,
			Help:        o.Help,
			ConstLabels: o.ConstLabels,
			Buckets:     buckets,
		})
	}

	return &Metrics{
		rendersTotal:        counter("renders_total", "Total number of component renders", "component"),
		unmountsTotal:       counter("unmounts_total", "Total number of component unmounts", "component"),
		rerenderRequests:    counter("rerender_requests_total", "Total number of re-renders requested by cell subscriptions", "component"),
		subscriptionsActive: gauge("subscriptions_active", "Number of live cell subscriptions"),
		subscriptionsTotal:  factory.NewCounter(prometheus.CounterOpts(config.opts("subscriptions_established_total", "Total number of cell subscriptions established"))),
		subscriptionCells:   histogram("subscription_cells", "Number of cells a subscription listens to", []float64{1, 2, 4, 8, 16, 32}),
		scopesActive:        factory.NewGaugeVec(prometheus.GaugeOpts(config.opts("scopes_active", "Number of active store scopes")), []string{"store"}),
		sessionsActive:      gauge("sessions_active", "Number of connected live sessions"),
		actionsTotal:        counter("actions_total", "Total number of dispatched actions", "action", "status"),
		flushDuration:       histogram("flush_duration_seconds", "Tree flush duration in seconds", config.Buckets),

		gatherer: config.Gatherer,
	}
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// NodeRendered implements host.Observer.
func (m *Metrics) NodeRendered(n *host.Node) {
	m.rendersTotal.WithLabelValues(n.Name()).Inc()
}

// NodeUnmounted implements host.Observer.
func (m *Metrics) NodeUnmounted(n *host.Node) {
	m.unmountsTotal.WithLabelValues(n.Name()).Inc()
}

// ScopeActivated implements sigstore.Observer.
func (m *Metrics) ScopeActivated(store string) {
	m.scopesActive.WithLabelValues(store).Inc()
}

// ScopeDeactivated implements sigstore.Observer.
func (m *Metrics) ScopeDeactivated(store string) {
	m.scopesActive.WithLabelValues(store).Dec()
}

// SubscriptionEstablished implements sigstore.Observer.
func (m *Metrics) SubscriptionEstablished(cells int) {
	m.subscriptionsActive.Inc()
	m.subscriptionsTotal.Inc()
	m.subscriptionCells.Observe(float64(cells))
}

// SubscriptionDisposed implements sigstore.Observer.
func (m *Metrics) SubscriptionDisposed() {
	m.subscriptionsActive.Dec()
}

// RerenderRequested implements sigstore.Observer.
func (m *Metrics) RerenderRequested(component string) {
	m.rerenderRequests.WithLabelValues(component).Inc()
}

// SessionOpened records a connected live session.
func (m *Metrics) SessionOpened() {
	m.sessionsActive.Inc()
}

// SessionClosed records a disconnected live session.
func (m *Metrics) SessionClosed() {
	m.sessionsActive.Dec()
}

// RecordAction counts a dispatched action. A nil err counts as "success".
func (m *Metrics) RecordAction(action string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.actionsTotal.WithLabelValues(action, status).Inc()
}

// ObserveFlush records the duration of one tree flush.
func (m *Metrics) ObserveFlush(d time.Duration) {
	m.flushDuration.Observe(d.Seconds())
}
