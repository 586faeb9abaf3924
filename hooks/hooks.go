// Package hooks provides production-ready Hook, Logger, and metrics
// implementations for the cache.
package hooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/imageloading/animatedcache/core"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) { s.log.Debug(msg, fields...) }
func (s *SlogLogger) Info(msg string, fields ...interface{})  { s.log.Info(msg, fields...) }
func (s *SlogLogger) Warn(msg string, fields ...interface{})  { s.log.Warn(msg, fields...) }
func (s *SlogLogger) Error(msg string, fields ...interface{}) { s.log.Error(msg, fields...) }

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs cache events at debug level.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) OnStore(key core.RequestKey, img *core.Image, cost int64) {
	h.logger.Debug("cache.store",
		"key", string(key),
		"kind", string(img.Kind()),
		"cost_bytes", cost,
	)
}

func (h *LoggingHook) OnEvict(key core.RequestKey, cost int64) {
	h.logger.Debug("cache.evict", "key", string(key), "cost_bytes", cost)
}

func (h *LoggingHook) OnHit(key core.RequestKey) {
	h.logger.Debug("cache.hit", "key", string(key))
}

func (h *LoggingHook) OnMiss(key core.RequestKey) {
	h.logger.Debug("cache.miss", "key", string(key))
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates cache metrics atomically; safe for concurrent use.
type InMemoryMetrics struct {
	hits      int64
	misses    int64
	stores    int64
	evictions int64
	refusals  int64
	resident  int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics { return &InMemoryMetrics{} }

func (m *InMemoryMetrics) RecordHit()                  { atomic.AddInt64(&m.hits, 1) }
func (m *InMemoryMetrics) RecordMiss()                 { atomic.AddInt64(&m.misses, 1) }
func (m *InMemoryMetrics) RecordStore(int64)           { atomic.AddInt64(&m.stores, 1) }
func (m *InMemoryMetrics) RecordEviction(int64)        { atomic.AddInt64(&m.evictions, 1) }
func (m *InMemoryMetrics) RecordRefusal()              { atomic.AddInt64(&m.refusals, 1) }
func (m *InMemoryMetrics) SetResidentCost(total int64) { atomic.StoreInt64(&m.resident, total) }

// Snapshot returns a point-in-time copy of the counters.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Hits:          atomic.LoadInt64(&m.hits),
		Misses:        atomic.LoadInt64(&m.misses),
		Stores:        atomic.LoadInt64(&m.stores),
		Evictions:     atomic.LoadInt64(&m.evictions),
		Refusals:      atomic.LoadInt64(&m.refusals),
		ResidentBytes: atomic.LoadInt64(&m.resident),
	}
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	Hits          int64
	Misses        int64
	Stores        int64
	Evictions     int64
	Refusals      int64
	ResidentBytes int64
}

var _ core.MetricsCollector = (*InMemoryMetrics)(nil)
var _ core.Hook = (*LoggingHook)(nil)
