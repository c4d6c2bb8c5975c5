package anomaly

import (
	"math"
	"testing"

	"Go2NetWatch/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		snap model.MetricsSnapshot
		want float64
	}{
		{"idle", model.MetricsSnapshot{}, 0},
		{
			"moderate load",
			model.MetricsSnapshot{CPUPercent: 50, MemoryPercent: 50, TrafficRate: 0, TotalConnections: 0},
			0.3,
		},
		{
			"saturated without attacks",
			model.MetricsSnapshot{CPUPercent: 100, MemoryPercent: 100, TrafficRate: 1000, TotalConnections: 100},
			1.0,
		},
		{
			"attack bonus",
			model.MetricsSnapshot{CPUPercent: 20, MemoryPercent: 40, TrafficRate: 10, TotalConnections: 50, DetectedAttacks: []string{"ddos"}},
			0.06 + 0.12 + 0.002 + 0.1 + 0.3,
		},
		{
			"clamped",
			model.MetricsSnapshot{CPUPercent: 150, MemoryPercent: 90, TrafficRate: 5000, TotalConnections: 400, DetectedAttacks: []string{"syn_flood"}},
			1.0,
		},
		{
			"negatives ignored",
			model.MetricsSnapshot{CPUPercent: -5, MemoryPercent: math.NaN(), TrafficRate: -1},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.snap), 1e-9)
		})
	}
}

func TestScoreAttackContribution(t *testing.T) {
	base := model.MetricsSnapshot{CPUPercent: 10, MemoryPercent: 10}
	withAttack := base
	withAttack.DetectedAttacks = []string{"port_scan", "ddos"}

	// the bonus is flat regardless of how many attack types are present
	assert.InDelta(t, AttackBonus, Score(withAttack)-Score(base), 1e-9)
}

func TestEvaluate(t *testing.T) {
	snap := model.MetricsSnapshot{CPUPercent: 100, MemoryPercent: 100}
	st := Evaluate(snap, DefaultThreshold)
	assert.InDelta(t, 0.6, st.Score, 1e-9)
	assert.True(t, st.Anomalous)
	assert.InDelta(t, 0.3, st.Factors.CPU, 1e-9)

	// a score equal to the threshold is not anomalous
	st = Evaluate(snap, 0.6)
	assert.False(t, st.Anomalous)
}
