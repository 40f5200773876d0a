package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sales"

// Metrics is the application's Prometheus registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	rowsLoaded    prometheus.Counter
	rowsDropped   *prometheus.CounterVec
	completeYears prometheus.Gauge
	reports       *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Raw rows read from the dataset.",
		}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows removed by each cleaning step.",
		}, []string{"step"}),
		completeYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "complete_years",
			Help:      "Years with sales in all twelve months.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_computations_total",
			Help:      "Aggregate views computed, by view.",
		}, []string{"view"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rowsLoaded,
		m.rowsDropped,
		m.completeYears,
		m.reports,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RowsLoaded(n int) {
	if m == nil {
		return
	}
	m.rowsLoaded.Add(float64(n))
}

func (m *Metrics) RowsDropped(step string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsDropped.WithLabelValues(step).Add(float64(n))
}

func (m *Metrics) SetCompleteYears(n int) {
	if m == nil {
		return
	}
	m.completeYears.Set(float64(n))
}

func (m *Metrics) ReportComputed(view string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(view).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
