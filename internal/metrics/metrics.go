package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bistwatch"

// Notification outcomes.
const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifyDropped = "dropped"
)

// Metrics holds every collector exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	passes        prometheus.Counter
	passDuration  prometheus.Histogram
	fetches       *prometheus.CounterVec
	records       prometheus.Gauge
	signals       prometheus.Counter
	signalLogSize prometheus.Gauge
	notifications *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry,
// together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes completed.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a reconciliation pass, fetches included.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Upstream fetches by source and result.",
		}, []string{"source", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "comparison_records",
			Help:      "Tickers with a comparison record.",
		}),
		signals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Discrepancy signals emitted.",
		}),
		signalLogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signal_log_size",
			Help:      "Signals currently held in the rolling log.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification messages by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.passes,
		m.passDuration,
		m.fetches,
		m.records,
		m.signals,
		m.signalLogSize,
		m.notifications,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PassCompleted records one finished pass.
func (m *Metrics) PassCompleted(d time.Duration, records, logSize int) {
	if m == nil {
		return
	}
	m.passes.Inc()
	m.passDuration.Observe(d.Seconds())
	m.records.Set(float64(records))
	m.signalLogSize.Set(float64(logSize))
}

// Fetch records the outcome of an upstream call.
func (m *Metrics) Fetch(source string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "unavailable"
	}
	m.fetches.WithLabelValues(source, result).Inc()
}

// SignalsEmitted adds n emitted signals.
func (m *Metrics) SignalsEmitted(n int) {
	if m == nil {
		return
	}
	m.signals.Add(float64(n))
}

// Notification records one message outcome.
func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
