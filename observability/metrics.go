package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Signals API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIErrorsTotal     *prometheus.CounterVec
	APIDuration        *prometheus.HistogramVec
	ListShapeFallbacks *prometheus.CounterVec

	// Query cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheCoalescedTotal *prometheus.CounterVec
	CacheRetriesTotal   *prometheus.CounterVec

	// Watchlist metrics
	WatchlistSize prometheus.Gauge

	// Page assembly metrics
	SectionErrorsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "signals_api",
				Name:      "requests_total",
				Help:      "Total number of signals API requests",
			},
			[]string{"resource"},
		),
		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "signals_api",
				Name:      "errors_total",
				Help:      "Total number of classified signals API failures",
			},
			[]string{"resource", "kind"},
		),
		APIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "signal_dashboard",
				Subsystem: "signals_api",
				Name:      "duration_seconds",
				Help:      "Duration of signals API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"resource"},
		),
		ListShapeFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "signals_api",
				Name:      "list_shape_fallbacks_total",
				Help:      "List payloads of unexpected shape that were treated as empty",
			},
			[]string{"resource"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "query_cache",
				Name:      "hits_total",
				Help:      "Queries served from a fresh cache entry",
			},
			[]string{"resource"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "query_cache",
				Name:      "misses_total",
				Help:      "Queries that required a fetch",
			},
			[]string{"resource"},
		),
		CacheCoalescedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "query_cache",
				Name:      "coalesced_total",
				Help:      "Queries that joined an identical in-flight fetch",
			},
			[]string{"resource"},
		),
		CacheRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "query_cache",
				Name:      "retries_total",
				Help:      "Fetch retries after temporary failures",
			},
			[]string{"resource"},
		),

		WatchlistSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "signal_dashboard",
				Subsystem: "watchlist",
				Name:      "symbols",
				Help:      "Number of symbols in the session watchlist",
			},
		),

		SectionErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "page",
				Name:      "section_errors_total",
				Help:      "Page sections rendered in an error state",
			},
			[]string{"page", "section"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "signal_dashboard",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "signal_dashboard",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "signal_dashboard",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signal_dashboard",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordAPIRequest records a signals API request and its duration
func (m *Metrics) RecordAPIRequest(resource string, duration time.Duration) {
	m.APIRequestsTotal.WithLabelValues(resource).Inc()
	m.APIDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordAPIError records a classified signals API failure
func (m *Metrics) RecordAPIError(resource, kind string) {
	m.APIErrorsTotal.WithLabelValues(resource, kind).Inc()
}

// RecordListShapeFallback records a list payload that was treated as empty
func (m *Metrics) RecordListShapeFallback(resource string) {
	m.ListShapeFallbacks.WithLabelValues(resource).Inc()
}

// RecordCacheHit records a query served from cache
func (m *Metrics) RecordCacheHit(resource string) {
	m.CacheHitsTotal.WithLabelValues(resource).Inc()
}

// RecordCacheMiss records a query that required a fetch
func (m *Metrics) RecordCacheMiss(resource string) {
	m.CacheMissesTotal.WithLabelValues(resource).Inc()
}

// RecordCacheCoalesced records a query that shared an in-flight fetch
func (m *Metrics) RecordCacheCoalesced(resource string) {
	m.CacheCoalescedTotal.WithLabelValues(resource).Inc()
}

// RecordCacheRetry records a retry of a temporary failure
func (m *Metrics) RecordCacheRetry(resource string) {
	m.CacheRetriesTotal.WithLabelValues(resource).Inc()
}

// SetWatchlistSize sets the current watchlist size
func (m *Metrics) SetWatchlistSize(size int) {
	m.WatchlistSize.Set(float64(size))
}

// RecordSectionError records a page section that failed independently
func (m *Metrics) RecordSectionError(page, section string) {
	m.SectionErrorsTotal.WithLabelValues(page, section).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveAPI records the signals API request and duration
func (t *Timer) ObserveAPI(resource string) {
	t.metrics.RecordAPIRequest(resource, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
