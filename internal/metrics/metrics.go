// Package metrics exposes prometheus counters for envelope traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hhdt"

// Stages reported by RecordRejected.
const (
	StageEncode = "encode"
	StageDecode = "decode"
)

// Metrics holds the collectors for one registry. Each instance owns its
// registry so tests and multiple servers do not collide.
type Metrics struct {
	registry    *prometheus.Registry
	encoded     *prometheus.CounterVec
	decoded     *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	activeCalls prometheus.Gauge
	handler     http.Handler
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		encoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packages_encoded_total",
			Help:      "Packages encoded, by package type.",
		}, []string{"type"}),
		decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packages_decoded_total",
			Help:      "Packages decoded, by package type.",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packages_rejected_total",
			Help:      "Inputs rejected as invalid, by stage.",
		}, []string{"stage"}),
		activeCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tool_calls",
			Help:      "MCP tool calls currently in flight.",
		}),
	}

	reg.MustRegister(
		m.encoded,
		m.decoded,
		m.rejected,
		m.activeCalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// RecordEncoded counts a package produced with the given type.
func (m *Metrics) RecordEncoded(typ string) {
	m.encoded.WithLabelValues(typ).Inc()
}

// RecordDecoded counts a package parsed with the given type.
func (m *Metrics) RecordDecoded(typ string) {
	m.decoded.WithLabelValues(typ).Inc()
}

// RecordRejected counts an input rejected at the given stage.
func (m *Metrics) RecordRejected(stage string) {
	m.rejected.WithLabelValues(stage).Inc()
}

// IncrementActiveCalls marks a tool call as started.
func (m *Metrics) IncrementActiveCalls() {
	m.activeCalls.Inc()
}

// DecrementActiveCalls marks a tool call as finished.
func (m *Metrics) DecrementActiveCalls() {
	m.activeCalls.Dec()
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// WritePrometheus serves the metrics in the prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
