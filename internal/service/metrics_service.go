package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the planner.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	exportsTotal    *prometheus.CounterVec
	exportFailures  *prometheus.CounterVec
	exportedEvents  prometheus.Histogram
	selectionOps    *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	exportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_exports_total",
		Help: "Calendar documents produced, by event mode",
	}, []string{"mode"})

	exportFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_export_failures_total",
		Help: "Export attempts rejected or failed, by reason",
	}, []string{"reason"})

	exportedEvents := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_exported_events",
		Help:    "Number of events in each exported document",
		Buckets: []float64{1, 2, 5, 10, 20, 31, 62, 124, 366},
	})

	selectionOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_selection_operations_total",
		Help: "Selection session operations, by kind",
	}, []string{"op"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, exportsTotal, exportFailures, exportedEvents, selectionOps, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		exportsTotal:    exportsTotal,
		exportFailures:  exportFailures,
		exportedEvents:  exportedEvents,
		selectionOps:    selectionOps,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordExport counts one exported document and observes its event count.
func (m *MetricsService) RecordExport(allDay bool, events int) {
	if m == nil {
		return
	}
	mode := "timed"
	if allDay {
		mode = "all_day"
	}
	m.exportsTotal.WithLabelValues(mode).Inc()
	m.exportedEvents.Observe(float64(events))
}

// RecordExportFailure counts an export that produced no document.
func (m *MetricsService) RecordExportFailure(reason string) {
	if m == nil {
		return
	}
	m.exportFailures.WithLabelValues(reason).Inc()
}

// RecordSelectionOp counts a selection session operation.
func (m *MetricsService) RecordSelectionOp(op string) {
	if m == nil {
		return
	}
	m.selectionOps.WithLabelValues(op).Inc()
}
