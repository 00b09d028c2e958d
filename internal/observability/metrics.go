// Package observability collects Prometheus metrics for the dashboard core.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the Prometheus registry and application metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recomputes      *prometheus.HistogramVec
	accountsTotal   *prometheus.GaugeVec
	sourceErrors    *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provender_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provender_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	recomputes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provender_ledger_recompute_duration_seconds",
		Help:    "Duration of full ledger recomputations per view.",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	accounts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "provender_ledger_accounts",
		Help: "Accounts produced by the latest recomputation per view.",
	}, []string{"view"})
	sourceErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provender_ledger_source_errors_total",
		Help: "Recoverable source fetch errors by collection.",
	}, []string{"source"})
	registry.MustRegister(requests, duration, recomputes, accounts, sourceErrors)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		recomputes:      recomputes,
		accountsTotal:   accounts,
		sourceErrors:    sourceErrors,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveRecompute records one engine run for a dashboard view.
func (m *Metrics) ObserveRecompute(view string, took time.Duration, accounts int) {
	if m == nil {
		return
	}
	m.recomputes.WithLabelValues(view).Observe(took.Seconds())
	m.accountsTotal.WithLabelValues(view).Set(float64(accounts))
}

// CountSourceError records a recoverable fetch failure for a collection.
func (m *Metrics) CountSourceError(source string) {
	if m == nil {
		return
	}
	m.sourceErrors.WithLabelValues(source).Inc()
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for registering additional metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
