package hooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/imageloading/animatedcache/core"
)

// PrometheusMetrics exposes cache counters through a prometheus.Registerer.
type PrometheusMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	stores    prometheus.Counter
	evictions prometheus.Counter
	refusals  prometheus.Counter
	resident  prometheus.Gauge
}

// NewPrometheusMetrics registers the cache metric set with reg.  Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_cache_hits_total",
			Help: "The total number of cache hits",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_cache_misses_total",
			Help: "The total number of cache misses",
		}),
		stores: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_cache_stores_total",
			Help: "The total number of images stored",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_cache_evictions_total",
			Help: "The total number of entries evicted to stay within budget",
		}),
		refusals: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_cache_refusals_total",
			Help: "The total number of stores refused by policy",
		}),
		resident: factory.NewGauge(prometheus.GaugeOpts{
			Name: "image_cache_resident_bytes",
			Help: "The current summed cost of resident images in bytes",
		}),
	}
}

func (m *PrometheusMetrics) RecordHit()                  { m.hits.Inc() }
func (m *PrometheusMetrics) RecordMiss()                 { m.misses.Inc() }
func (m *PrometheusMetrics) RecordStore(int64)           { m.stores.Inc() }
func (m *PrometheusMetrics) RecordEviction(int64)        { m.evictions.Inc() }
func (m *PrometheusMetrics) RecordRefusal()              { m.refusals.Inc() }
func (m *PrometheusMetrics) SetResidentCost(total int64) { m.resident.Set(float64(total)) }

var _ core.MetricsCollector = (*PrometheusMetrics)(nil)
