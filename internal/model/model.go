package model

import (
	"time"
)

// Connection states kept by the sampler.
const (
	StateEstablished = "ESTABLISHED"
	StateListen      = "LISTEN"
)

// ConnectionRecord is one normalized socket as reported by the OS.
type ConnectionRecord struct {
	Protocol      string `json:"protocol"`
	LocalAddress  string `json:"local"`
	RemoteAddress string `json:"remote"`
	State         string `json:"state"`
}

// Key returns the identity used to decide whether a connection has been seen before.
// The protocol is not part of the key.
func (c ConnectionRecord) Key() string {
	return c.LocalAddress + "-" + c.RemoteAddress + "-" + c.State
}

// Severity of a vulnerability finding.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
)

// VulnerabilityFinding flags a newly observed connection whose local port
// belongs to a commonly attacked service.
type VulnerabilityFinding struct {
	Connection ConnectionRecord `json:"connection"`
	Label      string           `json:"vulnerability"`
	Severity   Severity         `json:"severity"`
}

// InterfaceInfo describes a host interface with an IPv4 address.
// MAC is empty when the interface has no link-layer address.
type InterfaceInfo struct {
	Name    string `json:"name"`
	IP      string `json:"ip"`
	Netmask string `json:"netmask"`
	MAC     string `json:"mac"`
}

// Names of snapshot fields reported in MetricsSnapshot.Degraded.
const (
	FieldCPU         = "cpu_percent"
	FieldMemory      = "memory_percent"
	FieldConnections = "connections"
	FieldAttacks     = "detected_attacks"
	FieldNetIO       = "traffic_rate"
)

// MetricsSnapshot is the output of one sampling cycle.
type MetricsSnapshot struct {
	MonitorID             string                        `json:"monitor_id,omitempty"`
	Timestamp             time.Time                     `json:"timestamp"`
	CPUPercent            float64                       `json:"cpu_percent"`
	MemoryPercent         float64                       `json:"memory_percent"`
	Connections           map[string][]ConnectionRecord `json:"connections"`
	TotalConnections      int                           `json:"total_connections"`
	NewConnections        []ConnectionRecord            `json:"new_connections"`
	VulnerableConnections []VulnerabilityFinding        `json:"vulnerable_connections"`
	TrafficRate           float64                       `json:"traffic_rate"`
	NetworkErrors         uint64                        `json:"network_errors"`
	DetectedAttacks       []string                      `json:"detected_attacks"`

	// Degraded lists the fields that fell back to a zero value during this cycle.
	Degraded []string `json:"degraded,omitempty"`
}

// HasAttacks reports whether any attack type was detected.
func (s MetricsSnapshot) HasAttacks() bool {
	return len(s.DetectedAttacks) > 0
}

// IsDegraded reports whether the named field fell back to a default.
func (s MetricsSnapshot) IsDegraded(field string) bool {
	for _, d := range s.Degraded {
		if d == field {
			return true
		}
	}
	return false
}

// CountConnections sums the lengths of all per-protocol lists.
func CountConnections(conns map[string][]ConnectionRecord) int {
	total := 0
	for _, list := range conns {
		total += len(list)
	}
	return total
}
