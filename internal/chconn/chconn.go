// Package chconn opens the ClickHouse connection shared by the snapshot
// writer and the query layer.
package chconn

import (
	"context"
	"fmt"
	"time"

	"Go2NetWatch/internal/config"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const dialTimeout = 5 * time.Second

// Connect opens a compressed connection and pings the server.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(options(cfg))
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

func options(cfg config.ClickHouseConfig) *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: dialTimeout,
	}
}
