//go:build !linux

package sysstat

import (
	nwerrors "Go2NetWatch/internal/errors"
)

type hostReader struct{}

// NewReader returns a Reader for platforms without a proc filesystem. Only
// memory usage is available there.
func NewReader(string) Reader {
	return hostReader{}
}

func (hostReader) CPUPercent() (float64, error) {
	return 0, nwerrors.New(nwerrors.KindUnavailable, "cpu utilization is not supported on this platform")
}

func (hostReader) MemoryPercent() (float64, error) {
	return hostMemoryPercent()
}

func (hostReader) NetIO() (NetIOCounters, error) {
	return NetIOCounters{}, nwerrors.New(nwerrors.KindUnavailable, "network counters are not supported on this platform")
}
