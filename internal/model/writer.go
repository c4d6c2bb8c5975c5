package model

import "time"

// Writer defines a generic interface for persisting metrics snapshots.
type Writer interface {
	// Write persists the snapshots taken since the previous call, oldest first.
	Write(snapshots []MetricsSnapshot) error

	// GetInterval returns the configured flush interval for this writer.
	GetInterval() time.Duration

	// Close releases any connection held by the writer.
	Close() error
}

// HistorySource exposes the bounded snapshot history of a monitor.
type HistorySource interface {
	History() []MetricsSnapshot
}
