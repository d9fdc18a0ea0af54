package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics records product search latency, fallbacks and failures.
type SearchMetrics struct {
	duration *prometheus.HistogramVec
	fallback *prometheus.CounterVec
	failure  *prometheus.CounterVec
	cache    *prometheus.CounterVec
}

// NewSearchMetrics registers the search metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	if reg == nil {
		return &SearchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "product_search_duration_seconds",
		Help:    "Duration of product searches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "strategy"})
	fallback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_search_fallback_total",
		Help: "Sort strategies that fell back to in-memory recomputation.",
	}, []string{"strategy"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_search_failure_total",
		Help: "Product searches that failed after exhausting their fallback.",
	}, []string{"strategy"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_search_cache_total",
		Help: "Paged search cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(duration, fallback, failure, cache)
	return &SearchMetrics{
		duration: duration,
		fallback: fallback,
		failure:  failure,
		cache:    cache,
	}
}

// ObserveDuration records how long a search on the given path and strategy took.
func (s *SearchMetrics) ObserveDuration(path, strategy string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(path), normalizeLabel(strategy)).Observe(duration.Seconds())
}

func (s *SearchMetrics) IncFallback(strategy string) {
	if s == nil || s.fallback == nil {
		return
	}
	s.fallback.WithLabelValues(normalizeLabel(strategy)).Inc()
}

func (s *SearchMetrics) IncFailure(strategy string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(strategy)).Inc()
}

// IncCache counts a cache lookup; result is "hit", "miss" or "error".
func (s *SearchMetrics) IncCache(result string) {
	if s == nil || s.cache == nil {
		return
	}
	s.cache.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
