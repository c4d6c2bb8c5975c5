package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Go2NetWatch/internal/chconn"
	"Go2NetWatch/internal/config"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Request filters the stored snapshots. Zero values mean "no filter".
type Request struct {
	MonitorID string
	Since     time.Time
	Until     time.Time
	Limit     int
}

// SnapshotRow is one stored snapshot summary.
type SnapshotRow struct {
	Timestamp             time.Time `json:"timestamp"`
	MonitorID             string    `json:"monitor_id"`
	CPUPercent            float64   `json:"cpu_percent"`
	MemoryPercent         float64   `json:"memory_percent"`
	TotalConnections      uint32    `json:"total_connections"`
	NewConnections        uint32    `json:"new_connections"`
	VulnerableConnections uint32    `json:"vulnerable_connections"`
	TrafficRate           float64   `json:"traffic_rate"`
	NetworkErrors         uint64    `json:"network_errors"`
	DetectedAttacks       []string  `json:"detected_attacks"`
	AnomalyScore          float64   `json:"anomaly_score"`
}

// AttackCount is the number of snapshots in which an attack type was present.
type AttackCount struct {
	Attack    string    `json:"attack"`
	Snapshots uint64    `json:"snapshots"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Querier defines the interface for querying stored snapshots.
type Querier interface {
	RecentSnapshots(ctx context.Context, req Request) ([]SnapshotRow, error)
	AttackSummary(ctx context.Context, req Request) ([]AttackCount, error)
	Close() error
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := chconn.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func (q *clickhouseQuerier) Close() error {
	return q.conn.Close()
}

// whereClause renders the filters shared by all queries.
func whereClause(req Request) (string, []interface{}) {
	var clauses []string
	args := []interface{}{}

	if req.MonitorID != "" {
		clauses = append(clauses, "MonitorID = ?")
		args = append(args, req.MonitorID)
	}
	if !req.Since.IsZero() {
		clauses = append(clauses, "Timestamp >= ?")
		args = append(args, req.Since)
	}
	if !req.Until.IsZero() {
		clauses = append(clauses, "Timestamp <= ?")
		args = append(args, req.Until)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildSnapshotQuery(req Request) (string, []interface{}) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			Timestamp, MonitorID, CPUPercent, MemoryPercent, TotalConnections,
			NewConnections, VulnerableConnections, TrafficRate, NetworkErrors,
			DetectedAttacks, AnomalyScore
		FROM network_snapshots`)

	where, args := whereClause(req)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(" ORDER BY Timestamp DESC")
	if req.Limit > 0 {
		queryBuilder.WriteString(" LIMIT ?")
		args = append(args, req.Limit)
	}
	return queryBuilder.String(), args
}

func buildAttackQuery(req Request) (string, []interface{}) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			arrayJoin(DetectedAttacks) AS Attack,
			count() AS Snapshots,
			min(Timestamp) AS FirstSeen,
			max(Timestamp) AS LastSeen
		FROM network_snapshots`)

	where, args := whereClause(req)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(" GROUP BY Attack ORDER BY Snapshots DESC, Attack")
	return queryBuilder.String(), args
}

// RecentSnapshots returns the newest stored snapshots first.
func (q *clickhouseQuerier) RecentSnapshots(ctx context.Context, req Request) ([]SnapshotRow, error) {
	query, args := buildSnapshotQuery(req)
	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.Timestamp, &r.MonitorID, &r.CPUPercent, &r.MemoryPercent, &r.TotalConnections,
			&r.NewConnections, &r.VulnerableConnections, &r.TrafficRate, &r.NetworkErrors,
			&r.DetectedAttacks, &r.AnomalyScore); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AttackSummary counts, per attack type, the snapshots it was detected in.
func (q *clickhouseQuerier) AttackSummary(ctx context.Context, req Request) ([]AttackCount, error) {
	query, args := buildAttackQuery(req)
	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var out []AttackCount
	for rows.Next() {
		var c AttackCount
		if err := rows.Scan(&c.Attack, &c.Snapshots, &c.FirstSeen, &c.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan attack summary: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
