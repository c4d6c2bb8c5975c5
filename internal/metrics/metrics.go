// Package metrics exports snapshot values as Prometheus metrics.
package metrics

import (
	"net/http"

	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the monitor's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CPUPercent     prometheus.Gauge
	MemoryPercent  prometheus.Gauge
	TrafficRate    prometheus.Gauge
	NetworkErrors  prometheus.Gauge
	AnomalyScore   prometheus.Gauge
	Anomalous      prometheus.Gauge
	Connections    *prometheus.GaugeVec
	Degraded       *prometheus.GaugeVec
	AttackActive   *prometheus.GaugeVec
	Samples        prometheus.Counter
	NewConnections prometheus.Counter
	Findings       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netwatch_cpu_percent",
			Help: "Host CPU utilization in percent",
		}),
		MemoryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netwatch_memory_percent",
			Help: "Host memory utilization in percent",
		}),
		TrafficRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netwatch_traffic_rate_bytes_per_second",
			Help: "Bytes sent and received per second since the previous sample",
		}),
		NetworkErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netwatch_network_errors",
			Help: "Cumulative interface input and output errors",
		}),
		AnomalyScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netwatch_anomaly_score",
			Help: "Anomaly score of the latest snapshot (0 to 1)",
		}),
		Anomalous: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netwatch_anomalous",
			Help: "Whether the latest score exceeds the threshold (1 for anomalous)",
		}),
		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netwatch_connections",
			Help: "Active connections by protocol",
		}, []string{"protocol"}),
		Degraded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netwatch_degraded",
			Help: "Whether a snapshot field fell back to a default (1 for degraded)",
		}, []string{"field"}),
		AttackActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netwatch_attack_active",
			Help: "Whether an attack type is present in the attack log (1 for present)",
		}, []string{"attack"}),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netwatch_samples_total",
			Help: "Total number of snapshots taken",
		}),
		NewConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netwatch_new_connections_total",
			Help: "Total number of first-seen connections",
		}),
		Findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netwatch_vulnerable_connections_total",
			Help: "Total number of vulnerability findings",
		}, []string{"severity"}),
	}

	m.registry.MustRegister(
		m.CPUPercent, m.MemoryPercent, m.TrafficRate, m.NetworkErrors,
		m.AnomalyScore, m.Anomalous, m.Connections, m.Degraded, m.AttackActive,
		m.Samples, m.NewConnections, m.Findings,
	)
	return m
}

// Observe updates every collector from one snapshot and its evaluation.
func (m *Metrics) Observe(s model.MetricsSnapshot, status anomaly.Status) {
	m.CPUPercent.Set(s.CPUPercent)
	m.MemoryPercent.Set(s.MemoryPercent)
	m.TrafficRate.Set(s.TrafficRate)
	m.NetworkErrors.Set(float64(s.NetworkErrors))
	m.AnomalyScore.Set(status.Score)
	m.Anomalous.Set(boolValue(status.Anomalous))

	m.Connections.Reset()
	for proto, conns := range s.Connections {
		m.Connections.WithLabelValues(proto).Set(float64(len(conns)))
	}

	m.Degraded.Reset()
	for _, field := range s.Degraded {
		m.Degraded.WithLabelValues(field).Set(1)
	}

	m.AttackActive.Reset()
	for _, attack := range s.DetectedAttacks {
		m.AttackActive.WithLabelValues(attack).Set(1)
	}

	m.Samples.Inc()
	m.NewConnections.Add(float64(len(s.NewConnections)))
	for _, f := range s.VulnerableConnections {
		m.Findings.WithLabelValues(string(f.Severity)).Inc()
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
