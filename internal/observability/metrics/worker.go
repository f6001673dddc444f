package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	importTotal    *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	importInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	importTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inva",
			Subsystem: "worker",
			Name:      "dataset_import_total",
			Help:      "Total dataset imports by status.",
		},
		[]string{"service", "status"},
	)
	importDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inva",
			Subsystem: "worker",
			Name:      "dataset_import_duration_seconds",
			Help:      "Dataset import duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	importInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inva",
			Subsystem: "worker",
			Name:      "dataset_import_in_flight",
			Help:      "Number of in-flight dataset imports.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(importTotal, importDuration, importInFlight)

	return &WorkerMetrics{
		registry:       registry,
		importTotal:    importTotal,
		importDuration: importDuration,
		importInFlight: importInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveImport(service string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.importTotal.WithLabelValues(service, status).Inc()
	m.importDuration.WithLabelValues(service, status).Observe(time.Since(start).Seconds())
}

func (m *WorkerMetrics) ImportStarted() func() {
	m.importInFlight.Inc()
	return m.importInFlight.Dec
}
