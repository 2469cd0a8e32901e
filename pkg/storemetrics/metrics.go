// Package storemetrics exports store activity as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	m := storemetrics.Instrument(s, storemetrics.WithRegistry(reg))
//	defer m.Detach()
package storemetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/bindstore/pkg/store"
)

// Config configures the exported metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "bindstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification fan-out.
	// Default: 0, 1, 2, 4, 8, 16, 32, 64
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the fan-out histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "bindstore",
		Subsystem: "store",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics observes one store.
type Metrics struct {
	keysCreated   prometheus.Counter
	sets          prometheus.Counter
	notifications prometheus.Counter
	fanout        prometheus.Histogram

	reg        prometheus.Registerer
	collectors []prometheus.Collector
	remove     func()
}

var _ store.Observer = (*Metrics)(nil)

// Instrument registers the metrics of s and starts observing it. Registering
// two stores on one registry requires distinguishing ConstLabels, otherwise
// registration panics as with any promauto metric.
func Instrument(s *store.Store, opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	m := &Metrics{reg: config.Registry}

	m.keysCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "keys_created_total",
		Help:        "Total number of keys created in the store",
		ConstLabels: config.ConstLabels,
	})

	m.sets = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "sets_total",
		Help:        "Total number of writes to the store",
		ConstLabels: config.ConstLabels,
	})

	m.notifications = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "notifications_total",
		Help:        "Total number of subscriber and dependent notifications",
		ConstLabels: config.ConstLabels,
	})

	m.fanout = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "notify_fanout",
		Help:        "Number of consumers notified per write",
		ConstLabels: config.ConstLabels,
		Buckets:     config.Buckets,
	})

	keys := factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "keys",
		Help:        "Number of keys in the store",
		ConstLabels: config.ConstLabels,
	}, func() float64 {
		return float64(len(s.Keys()))
	})

	dependents := factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "dependents",
		Help:        "Number of implicit key dependencies held by mounted consumers",
		ConstLabels: config.ConstLabels,
	}, func() float64 {
		total := 0
		for _, k := range s.Keys() {
			total += s.DependentCount(k)
		}
		return float64(total)
	})

	m.collectors = []prometheus.Collector{m.keysCreated, m.sets, m.notifications, m.fanout, keys, dependents}
	m.remove = s.AddObserver(m)
	return m
}

// KeyCreated implements store.Observer.
func (m *Metrics) KeyCreated(store.Key) {
	m.keysCreated.Inc()
}

// ValueChanged implements store.Observer.
func (m *Metrics) ValueChanged(_ store.Key, _, _ any, notified int) {
	m.sets.Inc()
	m.notifications.Add(float64(notified))
	m.fanout.Observe(float64(notified))
}

// Detach stops observing the store and unregisters every metric.
func (m *Metrics) Detach() {
	if m.remove != nil {
		m.remove()
		m.remove = nil
	}
	for _, c := range m.collectors {
		m.reg.Unregister(c)
	}
	m.collectors = nil
}
