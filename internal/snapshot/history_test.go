package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"Go2NetWatch/internal/model"
)

func sampleSnapshots() []model.MetricsSnapshot {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	conn := model.ConnectionRecord{Protocol: "tcp", LocalAddress: "0.0.0.0:23", RemoteAddress: "0.0.0.0:*", State: model.StateListen}
	return []model.MetricsSnapshot{
		{
			Timestamp:        ts,
			CPUPercent:       12.5,
			MemoryPercent:    40,
			Connections:      map[string][]model.ConnectionRecord{"tcp": {conn}},
			TotalConnections: 1,
			NewConnections:   []model.ConnectionRecord{conn},
			VulnerableConnections: []model.VulnerabilityFinding{
				{Connection: conn, Label: "Potentially vulnerable Telnet port", Severity: model.SeverityHigh},
			},
			TrafficRate:     0.25,
			NetworkErrors:   7,
			DetectedAttacks: []string{"ddos"},
		},
		{
			Timestamp:             ts.Add(5 * time.Second),
			Connections:           map[string][]model.ConnectionRecord{},
			NewConnections:        []model.ConnectionRecord{},
			VulnerableConnections: []model.VulnerabilityFinding{},
			DetectedAttacks:       []string{},
			Degraded:              []string{"cpu_percent"},
		},
	}
}

func TestSaveAndLoadHistory(t *testing.T) {
	// 1. Write into a directory that does not exist yet
	path := filepath.Join(t.TempDir(), "data", "metrics_history.json")
	want := sampleSnapshots()
	if err := SaveHistory(path, want); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	// 2. Read it back
	got, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d snapshots, got %d", len(want), len(got))
	}
	if !got[0].Timestamp.Equal(want[0].Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", want[0].Timestamp, got[0].Timestamp)
	}
	if got[0].VulnerableConnections[0].Severity != model.SeverityHigh {
		t.Errorf("Expected High severity, got %s", got[0].VulnerableConnections[0].Severity)
	}
	if got[0].NetworkErrors != 7 || got[0].TrafficRate != 0.25 {
		t.Errorf("Counters did not survive the round trip: %+v", got[0])
	}
	if !got[1].IsDegraded("cpu_percent") {
		t.Errorf("Expected degraded marker to be kept")
	}

	// 3. No temp files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Failed to list history dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the history file, found %d entries", len(entries))
	}
}

func TestHistoryFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := SaveHistory(path, sampleSnapshots()[:1]); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	var raw []map[string]interface{}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("History is not a JSON array: %v", err)
	}
	for _, key := range []string{"timestamp", "cpu_percent", "memory_percent", "connections", "total_connections",
		"new_connections", "vulnerable_connections", "traffic_rate", "network_errors", "detected_attacks"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("Expected key '%s' in persisted snapshot", key)
		}
	}
	if _, ok := raw[0]["degraded"]; ok {
		t.Errorf("Expected 'degraded' to be omitted when empty")
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	got, err := LoadHistory(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil history, got %d entries", len(got))
	}
}

func TestLoadHistoryCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := LoadHistory(path); err == nil {
		t.Errorf("Expected an error for a corrupt history file")
	}
}
