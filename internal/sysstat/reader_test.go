package sysstat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCPUPercent(t *testing.T) {
	tests := []struct {
		name string
		prev cpuTimes
		cur  cpuTimes
		want float64
	}{
		{"since boot", cpuTimes{}, cpuTimes{busy: 8, total: 20}, 40},
		{"interval", cpuTimes{busy: 8, total: 20}, cpuTimes{busy: 13, total: 30}, 50},
		{"no elapsed ticks", cpuTimes{busy: 8, total: 20}, cpuTimes{busy: 8, total: 20}, 0},
		{"counter reset", cpuTimes{busy: 80, total: 200}, cpuTimes{busy: 1, total: 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cpuPercent(tt.prev, tt.cur), 1e-9)
		})
	}
}

func TestNetIOCountersTotals(t *testing.T) {
	c := NetIOCounters{BytesSent: 10, BytesRecv: 5, ErrIn: 2, ErrOut: 1}
	assert.Equal(t, uint64(15), c.TotalBytes())
	assert.Equal(t, uint64(3), c.TotalErrors())
}
