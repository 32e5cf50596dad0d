package observability

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics on top of a prometheus registry.
// Counter and histogram vectors are created lazily on first use; a metric
// name must always be used with the same set of tag keys.
type PrometheusMetrics struct {
	vecs        *vecRegistry
	serviceName string
	defaultTags map[string]string
}

type vecRegistry struct {
	mu         sync.Mutex
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics creates a metrics collector backed by its own
// registry. The service name is used as a prefix for all metric names.
func NewPrometheusMetrics(serviceName string) *PrometheusMetrics {
	return &PrometheusMetrics{
		vecs: &vecRegistry{
			registry:   prometheus.NewRegistry(),
			counters:   make(map[string]*prometheus.CounterVec),
			histograms: make(map[string]*prometheus.HistogramVec),
		},
		serviceName: sanitizeMetricName(serviceName),
	}
}

// Registry exposes the underlying registry, e.g. for gathering metric
// values at the end of a run.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.vecs.registry
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	merged := m.mergeTags(tags)
	keys, values := splitTags(merged)

	m.vecs.mu.Lock()
	vec, ok := m.vecs.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: m.metricName(name) + "_total",
				Help: "Counter " + name,
			},
			keys,
		)
		m.vecs.registry.MustRegister(vec)
		m.vecs.counters[name] = vec
	}
	m.vecs.mu.Unlock()

	vec.WithLabelValues(values...).Inc()
}

func (m *PrometheusMetrics) RecordHistogram(name string, value float64, tags map[string]string) {
	merged := m.mergeTags(tags)
	keys, values := splitTags(merged)

	m.vecs.mu.Lock()
	vec, ok := m.vecs.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    m.metricName(name),
				Help:    "Histogram " + name,
				Buckets: prometheus.DefBuckets,
			},
			keys,
		)
		m.vecs.registry.MustRegister(vec)
		m.vecs.histograms[name] = vec
	}
	m.vecs.mu.Unlock()

	vec.WithLabelValues(values...).Observe(value)
}

// WithTags returns a Metrics instance sharing the registry but carrying
// additional default tags.
func (m *PrometheusMetrics) WithTags(tags map[string]string) Metrics {
	merged := make(map[string]string, len(m.defaultTags)+len(tags))
	for k, v := range m.defaultTags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return &PrometheusMetrics{
		vecs:        m.vecs,
		serviceName: m.serviceName,
		defaultTags: merged,
	}
}

func (m *PrometheusMetrics) metricName(name string) string {
	return m.serviceName + "_" + sanitizeMetricName(name)
}

func (m *PrometheusMetrics) mergeTags(tags map[string]string) map[string]string {
	if len(m.defaultTags) == 0 {
		return tags
	}
	merged := make(map[string]string, len(m.defaultTags)+len(tags))
	for k, v := range m.defaultTags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return merged
}

func splitTags(tags map[string]string) ([]string, []string) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = tags[k]
	}
	return keys, values
}

func sanitizeMetricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}
