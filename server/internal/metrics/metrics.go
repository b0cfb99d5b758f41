package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/moneypit/moneypit/pkg/types"
)

// Metric names, shared with the CLI stats command.
const (
	VerdictsTotal      = "moneypit_verdicts_total"
	CacheRequestsTotal = "moneypit_cache_requests_total"
	ReloadsTotal       = "moneypit_coefficient_reloads_total"
	EvalDuration       = "moneypit_evaluation_duration_seconds"
	Generation         = "moneypit_coefficient_generation"
	WSClients          = "moneypit_ws_clients"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	verdicts   *prometheus.CounterVec
	cache      *prometheus.CounterVec
	reloads    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	generation prometheus.Gauge
	wsClients  prometheus.Gauge
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: VerdictsTotal,
			Help: "Verdicts served, by state and mode (evaluate|simulate|ws).",
		}, []string{"state", "mode"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Name: CacheRequestsTotal,
			Help: "Report cache lookups, by result (hit|miss).",
		}, []string{"result"}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: ReloadsTotal,
			Help: "Coefficient file reloads, by outcome (ok|error).",
		}, []string{"outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    EvalDuration,
			Help:    "Time to compute a report, excluding cache hits.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"mode"}),
		generation: f.NewGauge(prometheus.GaugeOpts{
			Name: Generation,
			Help: "Generation of the active coefficient snapshot.",
		}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Name: WSClients,
			Help: "Connected WebSocket simulator clients.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Gather returns the current metric families.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.reg.Gather()
}

// Verdict counts one served verdict.
func (m *Metrics) Verdict(state types.VerdictState, mode string) {
	m.verdicts.WithLabelValues(string(state), mode).Inc()
}

// CacheResult counts one cache lookup.
func (m *Metrics) CacheResult(hit bool) {
	if hit {
		m.cache.WithLabelValues("hit").Inc()
		return
	}
	m.cache.WithLabelValues("miss").Inc()
}

// Reload counts one coefficient reload attempt and, on success, records the
// new generation.
func (m *Metrics) Reload(err error, generation uint64) {
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.generation.Set(float64(generation))
}

// SetGeneration records the active generation without counting a reload.
func (m *Metrics) SetGeneration(generation uint64) {
	m.generation.Set(float64(generation))
}

// ObserveEval records how long one report took to compute.
func (m *Metrics) ObserveEval(mode string, d time.Duration) {
	m.duration.WithLabelValues(mode).Observe(d.Seconds())
}

// SetWSClients records the number of connected simulator clients.
func (m *Metrics) SetWSClients(n int) {
	m.wsClients.Set(float64(n))
}
