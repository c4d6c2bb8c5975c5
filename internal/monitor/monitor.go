// Package monitor samples host and network state into timestamped snapshots
// and keeps a bounded history of them.
package monitor

import (
	"sync"
	"time"

	"Go2NetWatch/internal/attacklog"
	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/snapshot"
	"Go2NetWatch/internal/sockets"
	"Go2NetWatch/internal/sysstat"
	"Go2NetWatch/internal/vuln"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxHistory is the number of snapshots retained when none is configured.
const DefaultMaxHistory = 1000

// ConnectionLister returns the current sockets grouped by protocol.
type ConnectionLister interface {
	ListActiveConnections() (map[string][]model.ConnectionRecord, error)
}

// AttackScanner returns the attack types present in the attack log.
type AttackScanner interface {
	Scan() ([]string, error)
}

// Options configures a Monitor. Nil collaborators get their production defaults.
type Options struct {
	MaxHistory  int
	ProcRoot    string
	AttackLog   string
	Sources     []string
	System      sysstat.Reader
	Connections ConnectionLister
	Attacks     AttackScanner
	// Now overrides the clock, for tests.
	Now func() time.Time
}

var _ model.Aggregator = (*Monitor)(nil)

// Monitor is the metrics aggregator. It owns all session state: the history,
// the set of connection keys seen so far and the previous network counters.
// It is safe for concurrent use; Sample calls are serialized.
type Monitor struct {
	id          string
	system      sysstat.Reader
	connections ConnectionLister
	attacks     AttackScanner
	now         func() time.Time

	mu       sync.Mutex
	history  *history
	seen     map[string]struct{}
	lastIO   sysstat.NetIOCounters
	lastTime time.Time
	primed   bool
}

// New creates a Monitor.
func New(opts Options) (*Monitor, error) {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.System == nil {
		opts.System = sysstat.NewReader(opts.ProcRoot)
	}
	if opts.Connections == nil {
		sampler, err := sockets.NewSampler(opts.Sources, opts.ProcRoot)
		if err != nil {
			return nil, err
		}
		opts.Connections = sampler
	}
	if opts.Attacks == nil {
		opts.Attacks = attacklog.NewScanner(opts.AttackLog)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &Monitor{
		id:          uuid.New().String(),
		system:      opts.System,
		connections: opts.Connections,
		attacks:     opts.Attacks,
		now:         opts.Now,
		history:     newHistory(opts.MaxHistory),
		seen:        make(map[string]struct{}),
	}
	m.lastTime = m.now()
	log.WithField("monitor_id", m.id).Debugf("Monitor created with history of %d", opts.MaxHistory)
	return m, nil
}

// ID returns the unique identifier of this monitor instance.
func (m *Monitor) ID() string {
	return m.id
}

// Sample runs one sampling cycle. A failing signal is logged and reported as
// a zero value; Sample itself never fails.
func (m *Monitor) Sample() model.MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := model.MetricsSnapshot{
		MonitorID:             m.id,
		Timestamp:             m.now(),
		NewConnections:        []model.ConnectionRecord{},
		VulnerableConnections: []model.VulnerabilityFinding{},
		DetectedAttacks:       []string{},
	}

	// 1. Host resources
	if pct, err := m.system.CPUPercent(); err != nil {
		m.degrade(&snap, model.FieldCPU, err)
	} else {
		snap.CPUPercent = pct
	}
	if pct, err := m.system.MemoryPercent(); err != nil {
		m.degrade(&snap, model.FieldMemory, err)
	} else {
		snap.MemoryPercent = pct
	}

	// 2. Connections
	conns, err := m.connections.ListActiveConnections()
	if err != nil {
		m.degrade(&snap, model.FieldConnections, err)
	}
	if conns == nil {
		conns = make(map[string][]model.ConnectionRecord)
	}
	snap.Connections = conns
	snap.TotalConnections = model.CountConnections(conns)

	// 3. New connections and their vulnerability findings
	for _, proto := range sockets.Protocols(conns) {
		for _, c := range conns[proto] {
			key := c.Key()
			if _, ok := m.seen[key]; ok {
				continue
			}
			m.seen[key] = struct{}{}
			snap.NewConnections = append(snap.NewConnections, c)
			if finding, ok := vuln.Classify(c); ok {
				snap.VulnerableConnections = append(snap.VulnerableConnections, finding)
			}
		}
	}

	// 4. Attack signatures
	if attacks, err := m.attacks.Scan(); err != nil {
		m.degrade(&snap, model.FieldAttacks, err)
	} else if attacks != nil {
		snap.DetectedAttacks = attacks
	}

	// 5-6. Traffic rate and error counters
	if io, err := m.system.NetIO(); err != nil {
		m.degrade(&snap, model.FieldNetIO, err)
	} else {
		snap.TrafficRate = m.trafficRate(io, snap.Timestamp)
		snap.NetworkErrors = io.TotalErrors()
	}

	// 7. History
	m.history.push(snap)
	return snap
}

// trafficRate returns MB/s since the previous successful reading and stores
// the current one. The first reading has no window and reports zero.
func (m *Monitor) trafficRate(io sysstat.NetIOCounters, now time.Time) float64 {
	elapsed := now.Sub(m.lastTime).Seconds()
	cur := io.TotalBytes()
	prev := m.lastIO.TotalBytes()
	primed := m.primed

	m.lastIO = io
	m.lastTime = now
	m.primed = true

	if !primed || elapsed <= 0 {
		return 0
	}
	delta := cur - prev
	if cur < prev {
		// counters were reset; the current total is the traffic since then
		delta = cur
	}
	return float64(delta) / (1024 * 1024 * elapsed)
}

func (m *Monitor) degrade(snap *model.MetricsSnapshot, field string, err error) {
	snap.Degraded = append(snap.Degraded, field)
	entry := log.WithFields(log.Fields{
		"field": field,
		"kind":  nwerrors.Classify(err).String(),
	})
	if nwerrors.Expected(err) {
		entry.Warnf("Sampling %s degraded: %v", field, err)
		return
	}
	entry.Errorf("Error sampling %s: %v", field, err)
}

// History returns a copy of the retained snapshots, oldest first.
func (m *Monitor) History() []model.MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.items()
}

// Latest returns the most recent snapshot.
func (m *Monitor) Latest() (model.MetricsSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.latest()
}

// SeenCount returns the number of distinct connection keys observed.
func (m *Monitor) SeenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

// Save writes the history to path as a JSON array.
func (m *Monitor) Save(path string) error {
	return snapshot.SaveHistory(path, m.History())
}

// Load replaces the history with the newest snapshots stored at path. A
// missing file leaves the history untouched. The seen-connection set is not
// rebuilt, so connections still open are reported as new once more.
func (m *Monitor) Load(path string) (int, error) {
	loaded, err := snapshot.LoadHistory(path)
	if err != nil {
		return 0, err
	}
	if loaded == nil {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.history.reset()
	for _, s := range loaded {
		m.history.push(s)
	}
	return m.history.len(), nil
}
