// Package sysstat reads host CPU, memory and network counters.
package sysstat

import (
	nwerrors "Go2NetWatch/internal/errors"

	"github.com/pbnjay/memory"
)

// NetIOCounters are system-wide cumulative network counters.
type NetIOCounters struct {
	BytesSent uint64
	BytesRecv uint64
	ErrIn     uint64
	ErrOut    uint64
}

// TotalBytes is the sum of bytes sent and received.
func (c NetIOCounters) TotalBytes() uint64 {
	return c.BytesSent + c.BytesRecv
}

// TotalErrors is the sum of inbound and outbound errors.
func (c NetIOCounters) TotalErrors() uint64 {
	return c.ErrIn + c.ErrOut
}

// Reader samples host resource usage.
type Reader interface {
	// CPUPercent returns utilization since the previous call, or since boot on the first call.
	CPUPercent() (float64, error)
	// MemoryPercent returns the share of physical memory in use.
	MemoryPercent() (float64, error)
	// NetIO returns cumulative counters summed over all interfaces.
	NetIO() (NetIOCounters, error)
}

// cpuTimes holds aggregate busy and total CPU seconds.
type cpuTimes struct {
	busy  float64
	total float64
}

// cpuPercent computes utilization between two readings.
func cpuPercent(prev, cur cpuTimes) float64 {
	dTotal := cur.total - prev.total
	dBusy := cur.busy - prev.busy
	if dTotal <= 0 || dBusy < 0 {
		return 0
	}
	pct := dBusy / dTotal * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// hostMemoryPercent is the portable fallback based on total and free memory.
func hostMemoryPercent() (float64, error) {
	total := memory.TotalMemory()
	if total == 0 {
		return 0, nwerrors.New(nwerrors.KindUnavailable, "total memory is unknown on this platform")
	}
	free := memory.FreeMemory()
	if free > total {
		free = total
	}
	return float64(total-free) / float64(total) * 100, nil
}
