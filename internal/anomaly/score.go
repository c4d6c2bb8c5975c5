// Package anomaly turns a metrics snapshot into a bounded risk score.
package anomaly

import (
	"math"

	"Go2NetWatch/internal/model"
)

// Weights and saturation points of the score factors.
const (
	CPUWeight        = 0.3
	MemoryWeight     = 0.3
	TrafficWeight    = 0.2
	ConnectionWeight = 0.2
	AttackBonus      = 0.3

	// TrafficCeiling is the traffic rate, in MB/s, at which the traffic factor saturates.
	TrafficCeiling = 1000.0
	// ConnectionCeiling is the connection count at which the connection factor saturates.
	ConnectionCeiling = 100.0

	DefaultThreshold = 0.5
)

// Factors is the per-signal contribution to the score.
type Factors struct {
	CPU         float64 `json:"cpu"`
	Memory      float64 `json:"memory"`
	Traffic     float64 `json:"traffic"`
	Connections float64 `json:"connections"`
	Attacks     float64 `json:"attacks"`
}

// Total sums the contributions and clamps the result to [0,1].
func (f Factors) Total() float64 {
	return clamp(f.CPU + f.Memory + f.Traffic + f.Connections + f.Attacks)
}

// Breakdown computes each factor's weighted contribution.
func Breakdown(s model.MetricsSnapshot) Factors {
	f := Factors{
		CPU:         CPUWeight * saturate(s.CPUPercent, 100),
		Memory:      MemoryWeight * saturate(s.MemoryPercent, 100),
		Traffic:     TrafficWeight * saturate(s.TrafficRate, TrafficCeiling),
		Connections: ConnectionWeight * saturate(float64(s.TotalConnections), ConnectionCeiling),
	}
	if s.HasAttacks() {
		f.Attacks = AttackBonus
	}
	return f
}

// Score returns the composite anomaly score of a snapshot, in [0,1].
func Score(s model.MetricsSnapshot) float64 {
	return Breakdown(s).Total()
}

// Status is a score judged against a threshold.
type Status struct {
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Anomalous bool    `json:"anomalous"`
	Factors   Factors `json:"factors"`
}

// Evaluate scores the snapshot and flags it when the score exceeds threshold.
func Evaluate(s model.MetricsSnapshot, threshold float64) Status {
	f := Breakdown(s)
	score := f.Total()
	return Status{
		Score:     score,
		Threshold: threshold,
		Anomalous: score > threshold,
		Factors:   f,
	}
}

// saturate maps v to v/ceiling capped at 1; negative and NaN inputs contribute nothing.
func saturate(v, ceiling float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return math.Min(v/ceiling, 1)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
