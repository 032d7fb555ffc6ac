package service

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/phonebook-api/internal/models"
)

const metricsNamespace = "phonebook"

// MetricsService owns the Prometheus registry and the counters behind the ops snapshot.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	cacheLookup     prometheus.Observer
	cacheWrite      prometheus.Observer
	dbQueryDuration *prometheus.HistogramVec
	contactWrites   *prometheus.CounterVec
	contactCount    prometheus.Gauge

	cacheHitCount  atomic.Uint64
	cacheMissCount atomic.Uint64
	dbQueryCount   atomic.Uint64
	dbQueryNanos   atomic.Uint64

	writesMu sync.Mutex
	writes   map[string]uint64
	now      func() time.Time
}

// NewMetricsService registers the phone book collectors plus the Go runtime ones.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route template",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "page_cache_lookups_total",
		Help:      "Contact page cache lookups by result",
	}, []string{"result"})

	cacheLookup := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "page_cache_lookup_seconds",
		Help:      "Latency of contact page cache lookups",
		Buckets:   prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "page_cache_write_seconds",
		Help:      "Latency of contact page cache writes",
		Buckets:   prometheus.DefBuckets,
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "db_query_duration_seconds",
		Help:      "Duration of contact repository queries",
		Buckets:   prometheus.DefBuckets,
	}, []string{"query"})

	contactWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "contact_writes_total",
		Help:      "Contacts created, updated or deleted",
	}, []string{"op"})

	contactCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "contacts",
		Help:      "Contacts in the book at the last counted page load",
	})

	registry.MustRegister(
		requestDuration, cacheLookups, cacheLookup, cacheWrite, dbQueryDuration, contactWrites, contactCount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		cacheLookups:    cacheLookups,
		cacheLookup:     cacheLookup,
		cacheWrite:      cacheWrite,
		dbQueryDuration: dbQueryDuration,
		contactWrites:   contactWrites,
		contactCount:    contactCount,
		writes:          make(map[string]uint64),
		now:             time.Now,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one request against its route template.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordCacheOperation counts and times a page cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLookup.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHitCount.Add(1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	m.cacheMissCount.Add(1)
}

// ObserveCacheWrite tracks page cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records repository query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.dbQueryCount.Add(1)
	m.dbQueryNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordContactWrite counts a successful create, update or delete.
func (m *MetricsService) RecordContactWrite(op string) {
	if m == nil {
		return
	}
	m.contactWrites.WithLabelValues(op).Inc()
	m.writesMu.Lock()
	m.writes[op]++
	m.writesMu.Unlock()
}

// SetContactCount publishes the latest known book size.
func (m *MetricsService) SetContactCount(total int) {
	if m == nil {
		return
	}
	m.contactCount.Set(float64(total))
}

// Snapshot summarises cache effectiveness, writes and database load for /ops/metrics.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{ContactWrites: map[string]uint64{}}
	}
	hits := m.cacheHitCount.Load()
	misses := m.cacheMissCount.Load()
	queries := m.dbQueryCount.Load()

	snap := models.MetricsSnapshot{
		CacheHits:     hits,
		CacheMisses:   misses,
		DBQueries:     queries,
		ContactWrites: make(map[string]uint64),
		GeneratedAt:   m.now().UTC(),
	}
	if lookups := hits + misses; lookups > 0 {
		snap.CacheHitRatio = float64(hits) / float64(lookups)
	}
	if queries > 0 {
		snap.AverageDBQueryMs = float64(m.dbQueryNanos.Load()) / float64(queries) / float64(time.Millisecond)
	}

	m.writesMu.Lock()
	for op, n := range m.writes {
		snap.ContactWrites[op] = n
	}
	m.writesMu.Unlock()
	return snap
}
