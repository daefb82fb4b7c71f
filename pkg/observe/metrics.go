package observe

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// MetricsConfig configures the Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pulse").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for recompute and effect
	// durations. Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// PerNodeLabels adds a node ID label to counters. Off by default;
	// graphs with many nodes would produce high-cardinality series.
	PerNodeLabels bool
}

// MetricsOption configures the Prometheus instrumentation.
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

// WithBuckets sets the duration histogram buckets.
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

// WithPerNodeLabels enables a node ID label on counters.
func WithPerNodeLabels(enabled bool) MetricsOption {
	return func(c *MetricsConfig) {
		c.PerNodeLabels = enabled
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "pulse",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors fed by the engine hooks.
type metrics struct {
	signalWrites      *prometheus.CounterVec
	recomputesTotal   *prometheus.CounterVec
	recomputeDuration prometheus.Histogram
	effectRunsTotal   *prometheus.CounterVec
	effectDuration    prometheus.Histogram
	batchFlushes      prometheus.Counter
	batchQueued       prometheus.Histogram
	batchDeduped      prometheus.Counter

	perNode bool
}

var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	counterLabels := []string{}
	if config.PerNodeLabels {
		counterLabels = []string{"node"}
	}

	return &metrics{
		perNode: config.PerNodeLabels,

		signalWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of signal writes that changed a value",
			ConstLabels: config.ConstLabels,
		}, counterLabels),

		recomputesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_recomputes_total",
			Help:        "Total number of computed recomputations",
			ConstLabels: config.ConstLabels,
		}, counterLabels),

		recomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_recompute_duration_seconds",
			Help:        "Computed recomputation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		effectRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect executions",
			ConstLabels: config.ConstLabels,
		}, counterLabels),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_run_duration_seconds",
			Help:        "Effect execution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		batchFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_flushes_total",
			Help:        "Total number of outermost batch flushes",
			ConstLabels: config.ConstLabels,
		}),

		batchQueued: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_queued_listeners",
			Help:        "Listeners queued per batch before deduplication",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),

		batchDeduped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_deduped_listeners_total",
			Help:        "Total listeners dropped by batch deduplication",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *metrics) counterLabels(id uint64) []string {
	if !m.perNode {
		return nil
	}
	return []string{strconv.FormatUint(id, 10)}
}

// hooks returns engine hooks that feed these collectors.
func (m *metrics) hooks() *pulse.Hooks {
	return &pulse.Hooks{
		OnSignalWrite: func(id uint64) {
			m.signalWrites.WithLabelValues(m.counterLabels(id)...).Inc()
		},
		OnComputedRecompute: func(id uint64, elapsed time.Duration) {
			m.recomputesTotal.WithLabelValues(m.counterLabels(id)...).Inc()
			m.recomputeDuration.Observe(elapsed.Seconds())
		},
		OnEffectRun: func(id uint64, elapsed time.Duration) {
			m.effectRunsTotal.WithLabelValues(m.counterLabels(id)...).Inc()
			m.effectDuration.Observe(elapsed.Seconds())
		},
		OnBatchFlush: func(queued, notified int) {
			m.batchFlushes.Inc()
			m.batchQueued.Observe(float64(queued))
			m.batchDeduped.Add(float64(queued - notified))
		},
	}
}

// EnableMetrics registers Prometheus collectors and installs engine hooks
// that feed them. Call once at startup, then expose the registry with
// promhttp.
//
// Metrics collected:
//   - pulse_signal_writes_total
//   - pulse_computed_recomputes_total
//   - pulse_computed_recompute_duration_seconds
//   - pulse_effect_runs_total
//   - pulse_effect_run_duration_seconds
//   - pulse_batch_flushes_total
//   - pulse_batch_queued_listeners
//   - pulse_batch_deduped_listeners_total
func EnableMetrics(opts ...MetricsOption) {
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

	pulse.SetHooks(m.hooks())
}

// NewMetricsHooks builds hooks bound to the given registry without
// touching process-global state. Intended for tests and embedding.
func NewMetricsHooks(opts ...MetricsOption) *pulse.Hooks {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return initMetrics(config).hooks()
}
