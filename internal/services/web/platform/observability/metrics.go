package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics holds the Prometheus collectors for the web service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	routeResolutions *prometheus.CounterVec
	readiness        *prometheus.CounterVec
	preloaderRemoval *prometheus.CounterVec
	pageLoads        *prometheus.CounterVec
	liveConnections  prometheus.Gauge
	activeVisits     prometheus.Gauge
}

// NewMetrics registers the web collectors on a fresh registry, including the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		routeResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_resolutions_total",
			Help:      "Route resolutions by route pattern and outcome.",
		}, []string{"route", "outcome"}),
		readiness: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shell_readiness_total",
			Help:      "Shell visits marked ready, by the source that fired first.",
		}, []string{"source"}),
		preloaderRemoval: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shell_preloader_removals_total",
			Help:      "Preloader removals by the trigger that fired first.",
		}, []string{"trigger"}),
		pageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_loads_total",
			Help:      "Page view loads by page id and result.",
		}, []string{"page", "result"}),
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shell_live_connections",
			Help:      "Open live shell channels.",
		}),
		activeVisits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shell_active_visits",
			Help:      "Shell visits currently tracked.",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.routeResolutions,
		m.readiness,
		m.preloaderRemoval,
		m.pageLoads,
		m.liveConnections,
		m.activeVisits,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests and custom exporters.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// InstrumentHTTP counts requests and observes latency.
func (m *Metrics) InstrumentHTTP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)
			m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(recorder.Status())).Inc()
			m.httpDuration.WithLabelValues(r.Method).Observe(time.Since(started).Seconds())
		})
	}
}

// RouteResolved records a route decision.
func (m *Metrics) RouteResolved(route string, outcome string) {
	if m == nil {
		return
	}
	m.routeResolutions.WithLabelValues(route, outcome).Inc()
}

// ShellReady records which source marked a visit ready.
func (m *Metrics) ShellReady(source string) {
	if m == nil {
		return
	}
	m.readiness.WithLabelValues(source).Inc()
}

// PreloaderRemoved records which trigger removed the preloader.
func (m *Metrics) PreloaderRemoved(trigger string) {
	if m == nil {
		return
	}
	m.preloaderRemoval.WithLabelValues(trigger).Inc()
}

// PageLoaded records a page view load result.
func (m *Metrics) PageLoaded(page string, result string) {
	if m == nil {
		return
	}
	m.pageLoads.WithLabelValues(page, result).Inc()
}

// LiveConnectionOpened tracks an opened live channel.
func (m *Metrics) LiveConnectionOpened() {
	if m == nil {
		return
	}
	m.liveConnections.Inc()
}

// LiveConnectionClosed tracks a closed live channel.
func (m *Metrics) LiveConnectionClosed() {
	if m == nil {
		return
	}
	m.liveConnections.Dec()
}

// SetActiveVisits reports the number of tracked shell visits.
func (m *Metrics) SetActiveVisits(n int) {
	if m == nil {
		return
	}
	m.activeVisits.Set(float64(n))
}
