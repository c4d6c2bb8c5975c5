package alerter

import (
	"errors"
	"testing"
	"time"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	subjects []string
	bodies   []string
	err      error
}

func (n *recordingNotifier) Send(subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

func testConfig() config.AlerterConfig {
	return config.AlerterConfig{
		Enabled:            true,
		ScoreThreshold:     0.5,
		NotifyOnAttack:     true,
		NotifyOnVulnerable: true,
		Cooldown:           "1m",
		AttackHistorySize:  3,
	}
}

func newTestAlerter(t *testing.T, n *recordingNotifier) (*Alerter, *time.Time) {
	t.Helper()
	a, err := NewAlerter(testConfig(), n)
	require.NoError(t, err)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }
	return a, &clock
}

func snap(ts time.Time, attacks ...string) model.MetricsSnapshot {
	return model.MetricsSnapshot{Timestamp: ts, DetectedAttacks: attacks}
}

func TestQuietSnapshotRaisesNothing(t *testing.T) {
	n := &recordingNotifier{}
	a, _ := newTestAlerter(t, n)

	assert.Empty(t, a.Evaluate(snap(time.Now())))
	assert.Empty(t, n.subjects)
}

func TestScoreAlert(t *testing.T) {
	n := &recordingNotifier{}
	a, _ := newTestAlerter(t, n)

	alerts := a.Evaluate(model.MetricsSnapshot{CPUPercent: 100, MemoryPercent: 100})
	require.Len(t, alerts, 1)
	assert.Equal(t, KindScore, alerts[0].Kind)
	assert.Contains(t, alerts[0].Message, "0.60")
	require.Len(t, n.subjects, 1)
	assert.Contains(t, n.subjects[0], "1 Triggered")
}

func TestOnlyNewAttacksAreReported(t *testing.T) {
	a, _ := newTestAlerter(t, nil)
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	alerts := a.Evaluate(snap(t0, "ddos"))
	require.Len(t, alerts, 1)
	assert.Equal(t, KindAttack, alerts[0].Kind)

	// still present: not new
	alerts = a.Evaluate(snap(t0.Add(time.Second), "ddos"))
	for _, al := range alerts {
		assert.NotEqual(t, KindAttack, al.Kind)
	}

	// gone then back: new again
	a.Evaluate(snap(t0.Add(2 * time.Second)))
	a.Evaluate(snap(t0.Add(3*time.Second), "ddos", "port_scan"))

	history := a.AttackHistory()
	require.Len(t, history, 3)
	assert.Equal(t, AttackEvent{Time: t0, Attack: "ddos"}, history[0])
	assert.Equal(t, "ddos", history[1].Attack)
	assert.Equal(t, "port_scan", history[2].Attack)
}

func TestAttackHistoryIsBounded(t *testing.T) {
	a, _ := newTestAlerter(t, nil)
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		a.Evaluate(snap(t0.Add(time.Duration(2*i)*time.Second), "ddos"))
		a.Evaluate(snap(t0.Add(time.Duration(2*i+1) * time.Second)))
	}
	history := a.AttackHistory()
	require.Len(t, history, 3)
	assert.Equal(t, t0.Add(4*time.Second), history[0].Time)
}

func TestVulnerabilityAlert(t *testing.T) {
	a, _ := newTestAlerter(t, &recordingNotifier{})
	s := model.MetricsSnapshot{VulnerableConnections: []model.VulnerabilityFinding{{
		Connection: model.ConnectionRecord{Protocol: "tcp", LocalAddress: "10.0.0.1:22", RemoteAddress: "1.2.3.4:5555", State: "ESTABLISHED"},
		Label:      "SSH Brute Force",
		Severity:   model.SeverityHigh,
	}}}
	alerts := a.Evaluate(s)
	require.Len(t, alerts, 1)
	assert.Equal(t, KindVulnerability, alerts[0].Kind)
	assert.Contains(t, alerts[0].Message, "10.0.0.1:22 -> 1.2.3.4:5555")
}

func TestCooldownSuppressesNotifications(t *testing.T) {
	n := &recordingNotifier{}
	a, clock := newTestAlerter(t, n)
	hot := model.MetricsSnapshot{CPUPercent: 100, MemoryPercent: 100}

	a.Evaluate(hot)
	*clock = clock.Add(30 * time.Second)
	assert.NotEmpty(t, a.Evaluate(hot), "alerts are still returned during cooldown")
	assert.Len(t, n.subjects, 1)

	*clock = clock.Add(31 * time.Second)
	a.Evaluate(hot)
	assert.Len(t, n.subjects, 2)
}

func TestFailedSendDoesNotStartCooldown(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	a, _ := newTestAlerter(t, n)
	hot := model.MetricsSnapshot{CPUPercent: 100, MemoryPercent: 100}

	a.Evaluate(hot)
	n.err = nil
	a.Evaluate(hot)
	assert.Len(t, n.subjects, 1)
}

func TestDisabledAlerterOnlyRecords(t *testing.T) {
	n := &recordingNotifier{}
	cfg := testConfig()
	cfg.Enabled = false
	a, err := NewAlerter(cfg, n)
	require.NoError(t, err)

	a.Evaluate(snap(time.Now(), "syn_flood"))
	assert.Empty(t, n.subjects)
	assert.Len(t, a.AttackHistory(), 1)
}

func TestNewAlerterRejectsBadCooldown(t *testing.T) {
	cfg := testConfig()
	cfg.Cooldown = "soon"
	_, err := NewAlerter(cfg, nil)
	assert.Error(t, err)
}

func TestDegradedAttackFieldKeepsPreviousAttacks(t *testing.T) {
	n := &recordingNotifier{}
	a, clock := newTestAlerter(t, n)
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.Len(t, a.Evaluate(snap(t0, "ddos")), 1)

	unreadable := snap(t0.Add(time.Second))
	unreadable.Degraded = []string{model.FieldAttacks}
	assert.Empty(t, a.Evaluate(unreadable))

	*clock = clock.Add(time.Hour)
	for _, al := range a.Evaluate(snap(t0.Add(2*time.Second), "ddos")) {
		assert.NotEqual(t, KindAttack, al.Kind)
	}

	history := a.AttackHistory()
	require.Len(t, history, 1)
	assert.Equal(t, t0, history[0].Time)
	assert.Len(t, n.subjects, 1)
}
