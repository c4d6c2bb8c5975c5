package manager

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/monitor"
	"Go2NetWatch/internal/snapshot"
	"Go2NetWatch/internal/sysstat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSystem struct{}

func (staticSystem) CPUPercent() (float64, error)          { return 12, nil }
func (staticSystem) MemoryPercent() (float64, error)       { return 34, nil }
func (staticSystem) NetIO() (sysstat.NetIOCounters, error) { return sysstat.NetIOCounters{}, nil }

type staticConnections struct{}

func (staticConnections) ListActiveConnections() (map[string][]model.ConnectionRecord, error) {
	return map[string][]model.ConnectionRecord{"tcp": {{
		Protocol: "tcp", LocalAddress: "0.0.0.0:3306", RemoteAddress: "0.0.0.0:*", State: model.StateListen,
	}}}, nil
}

type recordingWriter struct {
	mu      sync.Mutex
	batches [][]model.MetricsSnapshot
	closed  bool
}

func (w *recordingWriter) Write(s []model.MetricsSnapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches = append(w.batches, s)
	return nil
}

func (w *recordingWriter) GetInterval() time.Duration { return 20 * time.Millisecond }

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *recordingWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Monitor.Interval = "1h"
	cfg.Monitor.AttackLogPath = filepath.Join(dir, "attack.log")
	cfg.Monitor.HistoryFile = filepath.Join(dir, "history.json")
	cfg.API.Enabled = false
	cfg.Health.Enabled = false
	cfg.Writers = []config.WriterDef{{
		Type: "json", Enabled: true, Interval: "20ms",
		JSON: config.JSONConfig{Path: filepath.Join(dir, "sink.json")},
	}}
	return cfg
}

func newTestManager(t *testing.T, cfg *config.Config) *Manager {
	t.Helper()
	mon, err := monitor.New(monitor.Options{
		AttackLog:   cfg.Monitor.AttackLogPath,
		System:      staticSystem{},
		Connections: staticConnections{},
	})
	require.NoError(t, err)
	m, err := newManager(cfg, mon)
	require.NoError(t, err)
	return m
}

func TestSampleOnceFansOut(t *testing.T) {
	cfg := testConfig(t)
	m := newTestManager(t, cfg)
	w := &recordingWriter{}
	m.sinks = append(m.sinks, &sinkRunner{writer: w})

	snap := m.SampleOnce()
	assert.Equal(t, 1, snap.TotalConnections)
	require.Len(t, snap.VulnerableConnections, 1)

	for _, s := range m.sinks {
		s.flush()
	}
	assert.Equal(t, 1, w.total())

	latest, ok := m.Monitor().Latest()
	require.True(t, ok)
	assert.Equal(t, snap.Timestamp, latest.Timestamp)
}

func TestStartStopPersistsHistory(t *testing.T) {
	cfg := testConfig(t)
	m := newTestManager(t, cfg)
	w := &recordingWriter{}
	m.sinks = append(m.sinks, &sinkRunner{writer: w})

	require.NoError(t, m.Start())
	require.Eventually(t, func() bool { return w.total() >= 1 }, 5*time.Second, 10*time.Millisecond)
	m.Stop()
	m.Stop()

	assert.True(t, w.closed)
	history, err := snapshot.LoadHistory(cfg.Monitor.HistoryFile)
	require.NoError(t, err)
	assert.NotEmpty(t, history)

	sink, err := snapshot.LoadHistory(cfg.Writers[0].JSON.Path)
	require.NoError(t, err)
	assert.NotEmpty(t, sink)
}

func TestAttackLogChangeTriggersSample(t *testing.T) {
	cfg := testConfig(t)
	m := newTestManager(t, cfg)

	require.NoError(t, m.Start())
	defer m.Stop()
	require.Eventually(t, func() bool { return len(m.Monitor().History()) == 1 }, 5*time.Second, 10*time.Millisecond)

	// the first forced sample must be at least minTriggerGap after the initial one
	time.Sleep(minTriggerGap)
	require.NoError(t, os.WriteFile(cfg.Monitor.AttackLogPath,
		[]byte("WARNING Simulated SYN packet sent to 10.0.0.1\n"), 0o644))

	require.Eventually(t, func() bool {
		latest, ok := m.Monitor().Latest()
		return ok && latest.HasAttacks()
	}, 5*time.Second, 20*time.Millisecond)

	attacks := m.alerter.AttackHistory()
	require.NotEmpty(t, attacks)
	assert.Equal(t, "syn_flood", attacks[0].Attack)
}

func TestHistoryIsLoadedOnStartup(t *testing.T) {
	cfg := testConfig(t)
	prior := []model.MetricsSnapshot{{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), CPUPercent: 5}}
	require.NoError(t, snapshot.SaveHistory(cfg.Monitor.HistoryFile, prior))

	m := newTestManager(t, cfg)
	history := m.Monitor().History()
	require.Len(t, history, 1)
	assert.Equal(t, 5.0, history[0].CPUPercent)
}

func TestNewManagerRejectsBadInterval(t *testing.T) {
	cfg := testConfig(t)
	cfg.Monitor.Interval = "fast"
	mon, err := monitor.New(monitor.Options{System: staticSystem{}, Connections: staticConnections{}})
	require.NoError(t, err)
	_, err = newManager(cfg, mon)
	assert.Error(t, err)
}
