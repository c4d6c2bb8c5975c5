package sink

import (
	"context"
	"fmt"
	"time"

	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/chconn"
	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/factory"
	"Go2NetWatch/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	log "github.com/sirupsen/logrus"
)

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef, _ factory.Deps) (model.Writer, error) {
		interval, err := def.FlushInterval()
		if err != nil {
			return nil, err
		}
		return NewClickHouseWriter(def.ClickHouse, interval)
	})
}

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS network_snapshots (
    Timestamp             DateTime64(3),
    MonitorID             String,
    CPUPercent            Float64,
    MemoryPercent         Float64,
    TotalConnections      UInt32,
    NewConnections        UInt32,
    VulnerableConnections UInt32,
    TrafficRate           Float64,
    NetworkErrors         UInt64,
    DetectedAttacks       Array(String),
    Degraded              Array(String),
    AnomalyScore          Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (MonitorID, Timestamp);
`

const createFindingsTable = `
CREATE TABLE IF NOT EXISTS vulnerable_connections (
    Timestamp     DateTime64(3),
    MonitorID     String,
    Protocol      String,
    LocalAddress  String,
    RemoteAddress String,
    State         String,
    Label         String,
    Severity      LowCardinality(String)
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (MonitorID, Timestamp);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn     driver.Conn
	interval time.Duration
}

// NewClickHouseWriter connects to ClickHouse and makes sure the tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig, interval time.Duration) (model.Writer, error) {
	conn, err := chconn.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createSnapshotsTable, createFindingsTable} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn, interval: interval}, nil
}

// GetInterval returns the configured flush interval for this writer.
func (w *ClickHouseWriter) GetInterval() time.Duration {
	return w.interval
}

// Write inserts one row per snapshot and one row per vulnerability finding.
func (w *ClickHouseWriter) Write(snapshots []model.MetricsSnapshot) error {
	if len(snapshots) == 0 {
		return nil // Nothing to write
	}
	ctx := context.Background()

	if err := w.writeSnapshots(ctx, snapshots); err != nil {
		return err
	}
	findings := 0
	for _, s := range snapshots {
		findings += len(s.VulnerableConnections)
	}
	if findings > 0 {
		if err := w.writeFindings(ctx, snapshots); err != nil {
			return err
		}
	}

	log.Printf("Wrote %d snapshots and %d findings to ClickHouse", len(snapshots), findings)
	return nil
}

func (w *ClickHouseWriter) writeSnapshots(ctx context.Context, snapshots []model.MetricsSnapshot) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO network_snapshots")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, s := range snapshots {
		if err := batch.Append(snapshotRow(s)...); err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append snapshot to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		batch.Abort()
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (w *ClickHouseWriter) writeFindings(ctx context.Context, snapshots []model.MetricsSnapshot) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO vulnerable_connections")
	if err != nil {
		return fmt.Errorf("failed to prepare findings batch: %w", err)
	}
	for _, s := range snapshots {
		for _, f := range s.VulnerableConnections {
			if err := batch.Append(findingRow(s, f)...); err != nil {
				batch.Abort()
				return fmt.Errorf("failed to append finding to batch: %w", err)
			}
		}
	}
	if err := batch.Send(); err != nil {
		batch.Abort()
		return fmt.Errorf("failed to send findings batch: %w", err)
	}
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}

func snapshotRow(s model.MetricsSnapshot) []interface{} {
	degraded := s.Degraded
	if degraded == nil {
		degraded = []string{}
	}
	attacks := s.DetectedAttacks
	if attacks == nil {
		attacks = []string{}
	}
	return []interface{}{
		s.Timestamp,
		s.MonitorID,
		s.CPUPercent,
		s.MemoryPercent,
		uint32(s.TotalConnections),
		uint32(len(s.NewConnections)),
		uint32(len(s.VulnerableConnections)),
		s.TrafficRate,
		s.NetworkErrors,
		attacks,
		degraded,
		anomaly.Score(s),
	}
}

func findingRow(s model.MetricsSnapshot, f model.VulnerabilityFinding) []interface{} {
	return []interface{}{
		s.Timestamp,
		s.MonitorID,
		f.Connection.Protocol,
		f.Connection.LocalAddress,
		f.Connection.RemoteAddress,
		f.Connection.State,
		f.Label,
		string(f.Severity),
	}
}
