// Package metrics exposes Prometheus metrics for the HTTP API and the
// import/export pipeline.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/stockfile/internal/core"
)

const namespace = "stockfile"

// Metrics holds every collector on its own registry, so tests and multiple
// servers in one process do not collide on the default registerer.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	ImportsTotal    *prometheus.CounterVec
	ProductsTotal   *prometheus.CounterVec
	ExtractDuration prometheus.Histogram
	ExportsTotal    *prometheus.CounterVec
}

// New creates and registers the collectors. activeSessions, if non-nil, is
// sampled on every scrape.
func New(activeSessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Imports by source (spreadsheet, document) and phase reached (committed, failed)",
		}, []string{"source", "outcome"}),

		ProductsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_products_total",
			Help:      "Products added to sessions, split by validation state",
		}, []string{"source", "state"}),

		ExtractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_extraction_duration_seconds",
			Help:      "Duration of document AI extraction calls",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		}),

		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Stock file exports by format and outcome",
		}, []string{"format", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.RequestsTotal,
		m.ImportsTotal,
		m.ProductsTotal,
		m.ExtractDuration,
		m.ExportsTotal,
	)

	if activeSessions != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		}, func() float64 { return float64(activeSessions()) }))
	}

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency labelled by chi route
// pattern, keeping label cardinality bounded for session and product ids.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}

		m.RequestsTotal.With(labels).Inc()
		m.RequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

// ObserveImport records the outcome of one import and, on success, how many
// products were added and how many of them carry validation errors.
func (m *Metrics) ObserveImport(source string, err error, imported, withErrors int) {
	if err != nil {
		m.ImportsTotal.WithLabelValues(source, string(core.PhaseFailed)).Inc()
		return
	}
	m.ImportsTotal.WithLabelValues(source, string(core.PhaseCommitted)).Inc()
	m.ProductsTotal.WithLabelValues(source, "valid").Add(float64(imported - withErrors))
	m.ProductsTotal.WithLabelValues(source, "invalid").Add(float64(withErrors))
}

// ObserveExport records one export attempt.
func (m *Metrics) ObserveExport(format string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ExportsTotal.WithLabelValues(format, outcome).Inc()
}

// InstrumentExtractor wraps ex so that every extraction call, successful or
// not, is observed in ExtractDuration. A nil ex stays nil so the service
// still reports the extractor as unavailable.
func (m *Metrics) InstrumentExtractor(ex core.DocumentExtractor) core.DocumentExtractor {
	if ex == nil {
		return nil
	}
	return &timedExtractor{next: ex, hist: m.ExtractDuration}
}

type timedExtractor struct {
	next core.DocumentExtractor
	hist prometheus.Histogram
}

func (t *timedExtractor) Extract(ctx context.Context, fileName, mimeType string, data []byte) ([]core.Candidate, error) {
	timer := prometheus.NewTimer(t.hist)
	defer timer.ObserveDuration()
	return t.next.Extract(ctx, fileName, mimeType, data)
}
