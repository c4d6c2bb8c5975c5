package model

// Aggregator defines the interface of a metrics aggregator, allowing the
// scheduler, the API and the CLI to work against a fake in tests.
type Aggregator interface {
	// Sample performs one sampling cycle and returns the resulting snapshot.
	// It never fails; unavailable signals degrade to zero values.
	Sample() MetricsSnapshot

	// History returns a copy of the retained snapshots, oldest first.
	History() []MetricsSnapshot

	// Latest returns the most recent snapshot, if any.
	Latest() (MetricsSnapshot, bool)
}
