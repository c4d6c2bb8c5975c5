//go:build linux

package sysstat

import (
	"sync"

	nwerrors "Go2NetWatch/internal/errors"

	"github.com/prometheus/procfs"
	log "github.com/sirupsen/logrus"
)

type procReader struct {
	root string

	mu      sync.Mutex
	prevCPU cpuTimes
}

// NewReader returns a Reader backed by the proc filesystem at root.
func NewReader(root string) Reader {
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	return &procReader{root: root}
}

func (r *procReader) fs() (procfs.FS, error) {
	fs, err := procfs.NewFS(r.root)
	if err != nil {
		return procfs.FS{}, nwerrors.WrapOS(err, "failed to open procfs")
	}
	return fs, nil
}

func (r *procReader) CPUPercent() (float64, error) {
	fs, err := r.fs()
	if err != nil {
		return 0, err
	}
	stat, err := fs.Stat()
	if err != nil {
		return 0, nwerrors.WrapOS(err, "failed to read cpu stats")
	}
	c := stat.CPUTotal
	// guest time is already accounted in user time
	idle := c.Idle + c.Iowait
	busy := c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal
	cur := cpuTimes{busy: busy, total: busy + idle}

	r.mu.Lock()
	defer r.mu.Unlock()
	pct := cpuPercent(r.prevCPU, cur)
	r.prevCPU = cur
	return pct, nil
}

func (r *procReader) MemoryPercent() (float64, error) {
	fs, err := r.fs()
	if err == nil {
		var mi procfs.Meminfo
		if mi, err = fs.Meminfo(); err == nil {
			if pct, ok := meminfoPercent(mi); ok {
				return pct, nil
			}
		}
	}
	log.Debugf("Falling back to portable memory reading: %v", err)
	return hostMemoryPercent()
}

func meminfoPercent(mi procfs.Meminfo) (float64, bool) {
	if mi.MemTotal == nil || *mi.MemTotal == 0 {
		return 0, false
	}
	total := *mi.MemTotal
	var avail uint64
	switch {
	case mi.MemAvailable != nil:
		avail = *mi.MemAvailable
	case mi.MemFree != nil:
		// kernels before 3.14 lack MemAvailable
		avail = *mi.MemFree
		if mi.Buffers != nil {
			avail += *mi.Buffers
		}
		if mi.Cached != nil {
			avail += *mi.Cached
		}
	default:
		return 0, false
	}
	if avail > total {
		avail = total
	}
	return float64(total-avail) / float64(total) * 100, true
}

func (r *procReader) NetIO() (NetIOCounters, error) {
	fs, err := r.fs()
	if err != nil {
		return NetIOCounters{}, err
	}
	dev, err := fs.NetDev()
	if err != nil {
		return NetIOCounters{}, nwerrors.WrapOS(err, "failed to read network counters")
	}
	total := dev.Total()
	return NetIOCounters{
		BytesSent: total.TxBytes,
		BytesRecv: total.RxBytes,
		ErrIn:     total.RxErrors,
		ErrOut:    total.TxErrors,
	}, nil
}
