package sink

import (
	"errors"
	"time"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/factory"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/snapshot"

	log "github.com/sirupsen/logrus"
)

func init() {
	factory.RegisterWriter("json", func(def config.WriterDef, deps factory.Deps) (model.Writer, error) {
		if deps.History == nil {
			return nil, errors.New("json writer needs a history source")
		}
		interval, err := def.FlushInterval()
		if err != nil {
			return nil, err
		}
		return NewJSONWriter(def.JSON.Path, interval, deps.History)
	})
}

// JSONWriter keeps the history file in sync with the monitor's bounded history.
type JSONWriter struct {
	path     string
	interval time.Duration
	source   model.HistorySource
}

// NewJSONWriter creates a writer that dumps source's history to path.
func NewJSONWriter(path string, interval time.Duration, source model.HistorySource) (model.Writer, error) {
	if path == "" {
		return nil, errors.New("json writer needs a path")
	}
	return &JSONWriter{path: path, interval: interval, source: source}, nil
}

// Write rewrites the whole history file; the batch only signals that new data exists.
func (w *JSONWriter) Write(snapshots []model.MetricsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	history := w.source.History()
	if err := snapshot.SaveHistory(w.path, history); err != nil {
		return err
	}
	log.Debugf("Wrote %d snapshots to %s", len(history), w.path)
	return nil
}

// GetInterval returns the configured flush interval for this writer.
func (w *JSONWriter) GetInterval() time.Duration {
	return w.interval
}

// Close flushes the history one last time.
func (w *JSONWriter) Close() error {
	return snapshot.SaveHistory(w.path, w.source.History())
}
