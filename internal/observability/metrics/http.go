package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	cacheLookupsTotal     *prometheus.CounterVec
	providerAttemptsTotal *prometheus.CounterVec
	queryCategoriesTotal  *prometheus.CounterVec
	analysisDuration      *prometheus.HistogramVec
	cacheEntries          prometheus.GaugeFunc
}

func NewHTTPServerMetrics(service string, cacheSize func() int) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inva",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inva",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inva",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inva",
			Subsystem: "analysis",
			Name:      "cache_lookups_total",
			Help:      "Analysis cache lookups by endpoint and result.",
		},
		[]string{"service", "endpoint", "result"},
	)
	providerAttemptsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inva",
			Subsystem: "analysis",
			Name:      "provider_attempts_total",
			Help:      "Individual provider call attempts by outcome.",
		},
		[]string{"service", "provider", "outcome"},
	)
	queryCategoriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inva",
			Subsystem: "analysis",
			Name:      "query_categories_total",
			Help:      "Heuristic query classifications by category.",
		},
		[]string{"service", "category"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inva",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End-to-end analysis duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	cacheEntries := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "inva",
			Subsystem: "analysis",
			Name:      "cache_entries",
			Help:      "Current number of cached analysis results.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		func() float64 {
			if cacheSize == nil {
				return 0
			}
			return float64(cacheSize())
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		cacheLookupsTotal,
		providerAttemptsTotal,
		queryCategoriesTotal,
		analysisDuration,
		cacheEntries,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		cacheLookupsTotal:     cacheLookupsTotal,
		providerAttemptsTotal: providerAttemptsTotal,
		queryCategoriesTotal:  queryCategoriesTotal,
		analysisDuration:      analysisDuration,
		cacheEntries:          cacheEntries,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordCacheLookup(service, endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(service, endpoint, result).Inc()
}

func (m *HTTPServerMetrics) RecordProviderAttempt(service, provider, outcome string) {
	if provider == "" {
		provider = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.providerAttemptsTotal.WithLabelValues(service, provider, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordQueryCategory(service, category string) {
	if category == "" {
		category = "unknown"
	}
	m.queryCategoriesTotal.WithLabelValues(service, category).Inc()
}

func (m *HTTPServerMetrics) RecordAnalysisDuration(service, endpoint string, duration time.Duration) {
	m.analysisDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
