//go:build linux

package sysstat

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netDevFixture = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo:    1000      10    0    0    0     0          0         0     1000      10    0    0    0     0       0          0
  eth0: 2097152    2000    3    0    0     0          0         0  1048576    1500    2    0    0     0       0          0
`

func writeProc(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func statFixture(user, system, idle, iowait int) string {
	return "cpu  " + itoa(user) + " 0 " + itoa(system) + " " + itoa(idle) + " " + itoa(iowait) + " 0 0 0 0 0\n" +
		"cpu0 " + itoa(user) + " 0 " + itoa(system) + " " + itoa(idle) + " " + itoa(iowait) + " 0 0 0 0 0\n" +
		"intr 0\nctxt 100\nbtime 1700000000\nprocesses 10\nprocs_running 1\nprocs_blocked 0\nsoftirq 0 0 0 0 0 0 0 0 0 0 0\n"
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func TestProcReaderCPU(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, "stat", statFixture(600, 200, 1000, 200))

	r := NewReader(root)
	pct, err := r.CPUPercent()
	require.NoError(t, err)
	assert.InDelta(t, 40, pct, 1e-6)

	// 500 more busy ticks over 1000 total ticks
	writeProc(t, root, "stat", statFixture(1000, 300, 1500, 200))
	pct, err = r.CPUPercent()
	require.NoError(t, err)
	assert.InDelta(t, 50, pct, 1e-6)
}

func TestProcReaderMemory(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, "meminfo", "MemTotal:       8000000 kB\nMemFree:        1000000 kB\nMemAvailable:   2000000 kB\nBuffers:         100000 kB\nCached:          500000 kB\n")

	pct, err := NewReader(root).MemoryPercent()
	require.NoError(t, err)
	assert.InDelta(t, 75, pct, 1e-9)
}

func TestProcReaderNetIO(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, "net/dev", netDevFixture)

	c, err := NewReader(root).NetIO()
	require.NoError(t, err)
	assert.Equal(t, uint64(2098152), c.BytesRecv)
	assert.Equal(t, uint64(1049576), c.BytesSent)
	assert.Equal(t, uint64(3), c.ErrIn)
	assert.Equal(t, uint64(2), c.ErrOut)
}

func TestProcReaderMissingFiles(t *testing.T) {
	r := NewReader(t.TempDir())

	_, err := r.CPUPercent()
	assert.Error(t, err)
	_, err = r.NetIO()
	assert.Error(t, err)
}
