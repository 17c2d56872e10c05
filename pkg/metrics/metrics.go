// Package metrics exports Prometheus metrics for the readiness
// coordination core. It implements ready.Observer; wire it into a
// boundary or coordinator via the WithObserver option.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-go/sync-ssr/pkg/ready"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "syncssr").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for wait duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the wait duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "syncssr",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer is a ready.Observer exporting coordination metrics.
//
// Metrics collected:
//   - syncssr_slots_registered_total: Counter of registered slots
//   - syncssr_senders_acquired_total: Counter of acquired senders
//   - syncssr_senders_live: Gauge of live (unreleased) senders
//   - syncssr_notify_total: Counter of coordinator notifications
//   - syncssr_completions_total: Counter of slot completions
//   - syncssr_waits_total: Counter of resolved waits by outcome
//   - syncssr_wait_duration_seconds: Histogram of wait durations
type Observer struct {
	slotsRegistered prometheus.Counter
	sendersAcquired prometheus.Counter
	sendersLive     prometheus.Gauge
	notifies        prometheus.Counter
	completions     prometheus.Counter
	waits           *prometheus.CounterVec
	waitDuration    prometheus.Histogram
}

var _ ready.Observer = (*Observer)(nil)

// New creates a Prometheus observer, registering its collectors with
// the configured registry.
func New(opts ...MetricsOption) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		slotsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "slots_registered_total",
			Help:        "Total number of readiness slots registered with a coordinator",
			ConstLabels: config.ConstLabels,
		}),

		sendersAcquired: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "senders_acquired_total",
			Help:        "Total number of readiness senders acquired",
			ConstLabels: config.ConstLabels,
		}),

		sendersLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "senders_live",
			Help:        "Number of live (unreleased) readiness senders",
			ConstLabels: config.ConstLabels,
		}),

		notifies: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_total",
			Help:        "Total number of coordinator notifications (primings)",
			ConstLabels: config.ConstLabels,
		}),

		completions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "completions_total",
			Help:        "Total number of slot completions",
			ConstLabels: config.ConstLabels,
		}),

		waits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "waits_total",
			Help:        "Total number of resolved readiness waits by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		waitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "wait_duration_seconds",
			Help:        "Readiness wait duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// SlotRegistered implements ready.Observer.
func (o *Observer) SlotRegistered() {
	o.slotsRegistered.Inc()
}

// SenderAcquired implements ready.Observer.
func (o *Observer) SenderAcquired() {
	o.sendersAcquired.Inc()
	o.sendersLive.Inc()
}

// SenderReleased implements ready.Observer.
func (o *Observer) SenderReleased() {
	o.sendersLive.Dec()
}

// Primed implements ready.Observer.
func (o *Observer) Primed(slots int) {
	o.notifies.Inc()
}

// Completed implements ready.Observer.
func (o *Observer) Completed() {
	o.completions.Inc()
}

// WaitStarted implements ready.Observer.
func (o *Observer) WaitStarted() {}

// WaitResolved implements ready.Observer.
func (o *Observer) WaitResolved(d time.Duration, outcome ready.WaitOutcome) {
	o.waits.WithLabelValues(string(outcome)).Inc()
	o.waitDuration.Observe(d.Seconds())
}
