package alerter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/model"

	log "github.com/sirupsen/logrus"
)

// Kinds of alert raised by the alerter.
const (
	KindScore         = "score"
	KindAttack        = "attack"
	KindVulnerability = "vulnerability"
)

// AttackEvent records the first sample in which an attack type appeared.
type AttackEvent struct {
	Time   time.Time `json:"time"`
	Attack string    `json:"attack"`
}

// Alert is one triggered rule.
type Alert struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Alerter evaluates every snapshot against the alerting rules and sends a
// consolidated notification when any of them fires.
type Alerter struct {
	cfg      config.AlerterConfig
	cooldown time.Duration
	notifier model.Notifier
	now      func() time.Time

	mu          sync.Mutex
	prevAttacks map[string]struct{}
	history     []AttackEvent
	lastSent    time.Time
}

// NewAlerter creates a new Alerter instance. A nil notifier disables notifications
// but the attack history is still recorded.
func NewAlerter(cfg config.AlerterConfig, notifier model.Notifier) (*Alerter, error) {
	cooldown, err := cfg.CooldownDuration()
	if err != nil {
		return nil, err
	}
	if cfg.AttackHistorySize <= 0 {
		cfg.AttackHistorySize = 100
	}
	return &Alerter{
		cfg:         cfg,
		cooldown:    cooldown,
		notifier:    notifier,
		now:         time.Now,
		prevAttacks: make(map[string]struct{}),
	}, nil
}

// Evaluate checks one snapshot and returns the alerts it triggered.
func (a *Alerter) Evaluate(s model.MetricsSnapshot) []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()

	var alerts []Alert

	status := anomaly.Evaluate(s, a.cfg.ScoreThreshold)
	if status.Anomalous {
		alerts = append(alerts, Alert{
			Kind:    KindScore,
			Message: fmt.Sprintf("anomaly score %.2f exceeds threshold %.2f", status.Score, status.Threshold),
		})
	}

	newAttacks := a.recordAttacks(s)
	if a.cfg.NotifyOnAttack && len(newAttacks) > 0 {
		alerts = append(alerts, Alert{
			Kind:    KindAttack,
			Message: "new attack activity detected: " + strings.Join(newAttacks, ", "),
		})
	}

	if a.cfg.NotifyOnVulnerable && len(s.VulnerableConnections) > 0 {
		var lines []string
		for _, f := range s.VulnerableConnections {
			lines = append(lines, fmt.Sprintf("%s %s -> %s (%s)",
				f.Label, f.Connection.LocalAddress, f.Connection.RemoteAddress, f.Severity))
		}
		alerts = append(alerts, Alert{
			Kind:    KindVulnerability,
			Message: fmt.Sprintf("%d vulnerable connection(s):\n  %s", len(lines), strings.Join(lines, "\n  ")),
		})
	}

	if len(alerts) > 0 {
		a.notify(s, alerts)
	}
	return alerts
}

// recordAttacks returns the attack types present now but not in the previous
// sample and appends them to the bounded history. A sample whose attack field
// is degraded carries no signal and leaves the previous set in place.
func (a *Alerter) recordAttacks(s model.MetricsSnapshot) []string {
	if s.IsDegraded(model.FieldAttacks) {
		return nil
	}
	current := make(map[string]struct{}, len(s.DetectedAttacks))
	var fresh []string
	for _, attack := range s.DetectedAttacks {
		current[attack] = struct{}{}
		if _, ok := a.prevAttacks[attack]; ok {
			continue
		}
		fresh = append(fresh, attack)
		a.history = append(a.history, AttackEvent{Time: s.Timestamp, Attack: attack})
	}
	if over := len(a.history) - a.cfg.AttackHistorySize; over > 0 {
		a.history = append([]AttackEvent(nil), a.history[over:]...)
	}
	a.prevAttacks = current
	return fresh
}

func (a *Alerter) notify(s model.MetricsSnapshot, alerts []Alert) {
	if a.notifier == nil || !a.cfg.Enabled {
		return
	}
	now := a.now()
	if !a.lastSent.IsZero() && a.cooldown > 0 && now.Sub(a.lastSent) < a.cooldown {
		log.WithField("alerts", len(alerts)).Debug("alert notification suppressed by cooldown")
		return
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Network monitor alert summary for sample at %s\n", s.Timestamp.Format(time.RFC3339))
	for _, al := range alerts {
		fmt.Fprintf(&body, "\n[%s] %s\n", al.Kind, al.Message)
	}

	subject := fmt.Sprintf("Go2NetWatch Alert Summary (%d Triggered)", len(alerts))
	if err := a.notifier.Send(subject, body.String()); err != nil {
		log.WithError(err).Error("failed to send alert notification")
		return
	}
	a.lastSent = now
	log.WithField("alerts", len(alerts)).Info("alert notification sent")
}

// AttackHistory returns a copy of the recorded attack events, oldest first.
func (a *Alerter) AttackHistory() []AttackEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AttackEvent, len(a.history))
	copy(out, a.history)
	return out
}
