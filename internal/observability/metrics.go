package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sales_dashboard"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
	datasetLoads   *prometheus.CounterVec
	datasetLoadDur prometheus.Histogram
	datasetRows    prometheus.Gauge
	recompute      prometheus.Histogram
	filteredRows   prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "CSV load attempts by result.",
		}, []string{"result"}),
		datasetLoadDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent reading and parsing the CSV.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the loaded table.",
		}),
		recompute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time of one filter and aggregation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		filteredRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filtered_rows",
			Help:      "Rows selected by the most recent pass.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.datasetLoads,
		m.datasetLoadDur,
		m.datasetRows,
		m.recompute,
		m.filteredRows,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLoad records a dataset load attempt.
func (m *Metrics) ObserveLoad(rows int, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.datasetLoads.WithLabelValues(result).Inc()
	m.datasetLoadDur.Observe(elapsed.Seconds())
	if err == nil {
		m.datasetRows.Set(float64(rows))
	}
}

// ObserveRecompute records one dashboard pass.
func (m *Metrics) ObserveRecompute(elapsed time.Duration, rows int) {
	m.recompute.Observe(elapsed.Seconds())
	m.filteredRows.Set(float64(rows))
}

func (m *Metrics) RequestStarted() {
	m.httpInFlight.Inc()
}

func (m *Metrics) RequestFinished(method, route string, status int, elapsed time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
