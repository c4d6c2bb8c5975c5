// Package snapshot persists the snapshot history as a JSON array file.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"Go2NetWatch/internal/model"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SaveHistory writes snapshots to path as an indented JSON array. The file is
// replaced atomically so a crash never leaves a truncated history behind.
func SaveHistory(path string, snapshots []model.MetricsSnapshot) error {
	if snapshots == nil {
		snapshots = []model.MetricsSnapshot{}
	}

	// 1. Make sure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	// 2. Encode into a temp file next to the target
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshots); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode history to json: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	// 3. Swap it into place
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// LoadHistory reads a history file written by SaveHistory. A missing file
// returns nil without error.
func LoadHistory(path string) ([]model.MetricsSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var snapshots []model.MetricsSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode history file '%s': %w", path, err)
	}
	if snapshots == nil {
		snapshots = []model.MetricsSnapshot{}
	}
	return snapshots, nil
}
