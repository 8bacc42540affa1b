package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/depot/pkg/store"
)

// Action outcomes reported in the status label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// MetricsConfig configures the Prometheus metrics plugin.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "depot").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for action duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics plugin.
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
		Namespace: "depot",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collectors holds the collectors registered by Metrics.
type Collectors struct {
	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	MutationsTotal *prometheus.CounterVec
	StoresActive   prometheus.Gauge
}

func newCollectors(config MetricsConfig) *Collectors {
	factory := promauto.With(config.Registry)

	return &Collectors{
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_total",
			Help:        "Total number of store actions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "action", "status"}),

		ActionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_duration_seconds",
			Help:        "Store action duration in seconds, until settlement for asynchronous actions",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store", "action"}),

		MutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of observed store state changes",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		StoresActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stores_active",
			Help:        "Number of built stores that have not been disposed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Metrics creates a plugin that records Prometheus metrics for every store
// of the containers it is installed on.
//
// Metrics collected:
//   - depot_actions_total: Counter of actions by store, action and status
//   - depot_action_duration_seconds: Histogram of action duration
//   - depot_mutations_total: Counter of state changes by store
//   - depot_stores_active: Gauge of live stores
//
// The collectors are registered once per call; registering twice on the
// same registry panics.
func Metrics(opts ...MetricsOption) store.Plugin {
	plugin, _ := NewMetrics(opts...)
	return plugin
}

// NewMetrics is Metrics that also returns the registered collectors.
func NewMetrics(opts ...MetricsOption) (store.Plugin, *Collectors) {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := newCollectors(config)

	return func(ctx store.PluginContext) store.Extension {
		s := ctx.Store
		id := s.ID()

		m.StoresActive.Inc()
		s.Scope().OnCleanup(m.StoresActive.Dec)

		mutations := m.MutationsTotal.WithLabelValues(id)
		s.Subscribe(func(store.Mutation, map[string]any) {
			mutations.Inc()
		})

		s.OnAction(func(actx *store.ActionContext) {
			start := time.Now()
			observe := func(status string) {
				m.ActionsTotal.WithLabelValues(id, actx.Name, status).Inc()
				m.ActionDuration.WithLabelValues(id, actx.Name).Observe(time.Since(start).Seconds())
			}
			actx.After(func(any) { observe(StatusOK) })
			actx.OnError(func(error) { observe(StatusError) })
		})

		return store.Extension{}
	}, m
}
