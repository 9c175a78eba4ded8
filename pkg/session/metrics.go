package session

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UnsealResult classifies how an incoming session cookie was read.
type UnsealResult string

const (
	UnsealOK      UnsealResult = "ok"
	UnsealAbsent  UnsealResult = "absent"
	UnsealInvalid UnsealResult = "invalid"
	UnsealExpired UnsealResult = "expired"
)

// Metrics receives session lifecycle observations. Implementations must be
// safe for concurrent use.
type Metrics interface {
	ObserveSeal(d time.Duration, err error)
	ObserveUnseal(result UnsealResult)
	ObserveCommit(err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSeal(time.Duration, error) {}
func (noopMetrics) ObserveUnseal(UnsealResult)       {}
func (noopMetrics) ObserveCommit(error)              {}

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "session").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for seal duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithMetricsSubsystem sets the metrics subsystem.
func WithMetricsSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithMetricsConstLabels sets constant labels for all metrics.
func WithMetricsConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithMetricsBuckets sets the seal duration histogram buckets.
func WithMetricsBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		if len(buckets) > 0 {
			c.Buckets = buckets
		}
	}
}

// WithMetricsRegistry sets the Prometheus registry.
func WithMetricsRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		if registry != nil {
			c.Registry = registry
		}
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "session",
		// Sealing is sub-millisecond for typical payloads.
		Buckets:  []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
		Registry: prometheus.DefaultRegisterer,
	}
}

// PrometheusMetrics records session metrics:
//   - session_seal_total: seals by status
//   - session_seal_duration_seconds: seal latency
//   - session_unseal_total: incoming cookies by result
//   - session_commit_total: commit gate outcomes by status
type PrometheusMetrics struct {
	sealTotal    *prometheus.CounterVec
	sealDuration prometheus.Histogram
	unsealTotal  *prometheus.CounterVec
	commitTotal  *prometheus.CounterVec
}

// NewPrometheusMetrics registers the session collectors. Registering twice
// on the same registry panics, as promauto does.
func NewPrometheusMetrics(opts ...MetricsOption) *PrometheusMetrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &PrometheusMetrics{
		sealTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "seal_total",
			Help:        "Total number of session seals by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		sealDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "seal_duration_seconds",
			Help:        "Session seal duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		unsealTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unseal_total",
			Help:        "Total number of incoming session cookies by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		commitTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_total",
			Help:        "Total number of session commits by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),
	}
}

func (p *PrometheusMetrics) ObserveSeal(d time.Duration, err error) {
	p.sealTotal.WithLabelValues(status(err)).Inc()
	p.sealDuration.Observe(d.Seconds())
}

func (p *PrometheusMetrics) ObserveUnseal(result UnsealResult) {
	p.unsealTotal.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusMetrics) ObserveCommit(err error) {
	p.commitTotal.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSerialize):
		return "serialize_error"
	case errors.Is(err, ErrStageFailed):
		return "stage_error"
	default:
		return "error"
	}
}
