// Package export persists pipeline results: JSON checkpoints for resuming
// review sessions and CSV sheets for spreadsheet handoff.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"slate/internal/script"
)

// Checkpoint is a point-in-time snapshot of enriched scenes.
type Checkpoint struct {
	SavedAt    time.Time      `json:"saved_at"`
	ScriptPath string         `json:"script_path,omitempty"`
	Scenes     []script.Scene `json:"scenes"`
}

// SaveCheckpoint writes the snapshot as indented JSON. The write goes through
// a temp file and rename so a crash never leaves a half-written checkpoint.
func SaveCheckpoint(path string, cp *Checkpoint) error {
	if cp.SavedAt.IsZero() {
		cp.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a snapshot from disk. A missing or unparsable file
// yields an empty checkpoint rather than an error: a stale or corrupt
// checkpoint means starting fresh, not aborting the session.
func LoadCheckpoint(path string) *Checkpoint {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Checkpoint{}
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return &Checkpoint{}
	}
	return &cp
}
