package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"Go2NetWatch/internal/alerter"
	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/api"
	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/factory"
	"Go2NetWatch/internal/health"
	"Go2NetWatch/internal/inventory"
	"Go2NetWatch/internal/metrics"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/monitor"
	"Go2NetWatch/internal/notification"
	_ "Go2NetWatch/internal/sink" // Registers the json, clickhouse and nats writers

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// minTriggerGap bounds how often attack-log changes can force a sample.
const minTriggerGap = time.Second

// sinkRunner buffers the snapshots taken since its writer's last flush.
type sinkRunner struct {
	writer  model.Writer
	mu      sync.Mutex
	pending []model.MetricsSnapshot
}

func (s *sinkRunner) enqueue(snap model.MetricsSnapshot) {
	s.mu.Lock()
	s.pending = append(s.pending, snap)
	s.mu.Unlock()
}

func (s *sinkRunner) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if err := s.writer.Write(batch); err != nil {
		log.WithError(err).WithField("snapshots", len(batch)).Error("failed to write snapshots")
	}
}

// Manager schedules sampling and fans every snapshot out to the writers,
// the alerter, the metrics exporter, the API stream and the health service.
type Manager struct {
	cfg       *config.Config
	monitor   *monitor.Monitor
	interval  time.Duration
	threshold float64

	sinks   []*sinkRunner
	alerter *alerter.Alerter
	metrics *metrics.Metrics
	api     *api.Server
	health  *health.Server

	trigger  chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewManager builds the monitor and every enabled component from the configuration.
func NewManager(cfg *config.Config) (*Manager, error) {
	mon, err := monitor.New(monitor.Options{
		MaxHistory: cfg.Monitor.MaxHistory,
		ProcRoot:   cfg.Monitor.ProcRoot,
		AttackLog:  cfg.Monitor.AttackLogPath,
		Sources:    cfg.Monitor.ConnectionSources,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	return newManager(cfg, mon)
}

func newManager(cfg *config.Config, mon *monitor.Monitor) (*Manager, error) {
	interval, err := cfg.Monitor.SampleInterval()
	if err != nil {
		return nil, err
	}

	if cfg.Monitor.HistoryFile != "" {
		n, err := mon.Load(cfg.Monitor.HistoryFile)
		if err != nil {
			log.WithError(err).Warn("failed to load snapshot history, starting empty")
		} else if n > 0 {
			log.WithField("snapshots", n).Info("Loaded snapshot history")
		}
	}

	writers, err := factory.CreateWriters(cfg, factory.Deps{History: mon})
	if err != nil {
		return nil, err
	}

	var notifier model.Notifier
	if cfg.Alerter.Enabled {
		notifier = notification.New(cfg.SMTP)
	}
	alertr, err := alerter.NewAlerter(cfg.Alerter, notifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create alerter: %w", err)
	}

	m := &Manager{
		cfg:       cfg,
		monitor:   mon,
		interval:  interval,
		threshold: cfg.Monitor.AnomalyThreshold,
		alerter:   alertr,
		metrics:   metrics.NewMetrics(),
		trigger:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, w := range writers {
		m.sinks = append(m.sinks, &sinkRunner{writer: w})
	}

	if cfg.API.Enabled {
		m.api = api.NewServer(cfg.API.ListenAddr, api.Deps{
			Monitor:    mon,
			Threshold:  m.threshold,
			Interfaces: inventory.ListInterfaces,
			Attacks:    alertr.AttackHistory,
			Metrics:    m.metrics.Handler(),
		})
	}
	if cfg.Health.Enabled {
		m.health = health.NewServer(cfg.Health.ListenAddr)
	}
	return m, nil
}

// Monitor returns the managed monitor.
func (m *Manager) Monitor() *monitor.Monitor {
	return m.monitor
}

// Start launches the servers and the background loops.
func (m *Manager) Start() error {
	if m.api != nil {
		if err := m.api.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
	}
	if m.health != nil {
		if err := m.health.Start(); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
		m.health.SetMonitorServing(true)
	}

	for _, s := range m.sinks {
		m.wg.Add(1)
		go m.runFlusher(s)
		log.Infof("Started flusher for a writer with interval %s", s.writer.GetInterval())
	}

	if m.cfg.Monitor.WatchAttackLog && m.cfg.Monitor.AttackLogPath != "" {
		if err := m.startWatcher(m.cfg.Monitor.AttackLogPath); err != nil {
			log.WithError(err).Warn("attack log watch disabled")
		}
	}

	m.wg.Add(1)
	go m.runSampler()
	log.WithField("monitor_id", m.monitor.ID()).Infof("Manager started, sampling every %s", m.interval)
	return nil
}

func (m *Manager) runSampler() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	last := m.SampleOnce().Timestamp
	for {
		select {
		case <-ticker.C:
			last = m.SampleOnce().Timestamp
		case <-m.trigger:
			if time.Since(last) < minTriggerGap {
				continue
			}
			log.Debug("attack log changed, sampling early")
			last = m.SampleOnce().Timestamp
		case <-m.done:
			return
		}
	}
}

// SampleOnce takes one snapshot and hands it to every consumer.
func (m *Manager) SampleOnce() model.MetricsSnapshot {
	snap := m.monitor.Sample()
	status := anomaly.Evaluate(snap, m.threshold)

	for _, s := range m.sinks {
		s.enqueue(snap)
	}
	m.alerter.Evaluate(snap)
	m.metrics.Observe(snap, status)
	if m.api != nil {
		m.api.Broadcast(snap)
	}
	if m.health != nil {
		m.health.Observe(snap)
	}

	entry := log.WithFields(log.Fields{
		"connections": snap.TotalConnections,
		"new":         len(snap.NewConnections),
		"vulnerable":  len(snap.VulnerableConnections),
		"score":       fmt.Sprintf("%.2f", status.Score),
	})
	if status.Anomalous {
		entry.Warn("Anomalous snapshot")
	} else {
		entry.Debug("Snapshot taken")
	}
	return snap
}

// runFlusher writes a sink's pending snapshots on its own interval and once more on shutdown.
func (m *Manager) runFlusher(s *sinkRunner) {
	defer m.wg.Done()
	interval := s.writer.GetInterval()
	if interval <= 0 {
		log.Warnf("Invalid interval %s for writer, flusher will not run.", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-m.done:
			s.flush()
			return
		}
	}
}

// startWatcher watches the attack log's directory so the file may be
// created, rotated or removed while the monitor runs.
func (m *Manager) startWatcher(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				select {
				case m.trigger <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("attack log watcher error")
			case <-m.done:
				return
			}
		}
	}()
	return nil
}

// Stop flushes every writer, persists the history and stops the servers.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		log.Info("Manager stopping...")
		if m.health != nil {
			m.health.SetMonitorServing(false)
		}
		close(m.done)
		m.wg.Wait()

		for _, s := range m.sinks {
			if err := s.writer.Close(); err != nil {
				log.WithError(err).Error("failed to close writer")
			}
		}

		if m.cfg.Monitor.HistoryFile != "" {
			if err := m.monitor.Save(m.cfg.Monitor.HistoryFile); err != nil {
				log.WithError(err).Error("failed to save snapshot history")
			}
		}

		if m.api != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := m.api.Shutdown(ctx); err != nil {
				log.WithError(err).Warn("HTTP API shutdown")
			}
			cancel()
		}
		if m.health != nil {
			m.health.Stop()
		}
		log.Info("Manager stopped.")
	})
}
