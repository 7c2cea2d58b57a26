package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StageCounts are the progress counters of one scanned source.
type StageCounts struct {
	Scanned   int64 `json:"scanned"`
	Kept      int64 `json:"kept"`
	Malformed int64 `json:"malformed"`
	Batches   int64 `json:"batches"`
}

// FileEntry describes one committed table.
type FileEntry struct {
	Path       string `json:"path"`
	Rows       int    `json:"rows"`
	Bytes      int64  `json:"bytes"`
	XXH3       string `json:"xxh3_128"`
	Budget     int64  `json:"budget_bytes,omitempty"`
	OverBudget bool   `json:"over_budget"`
}

// Manifest summarizes one run.
type Manifest struct {
	Job        string                 `json:"job"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Sources    map[string]StageCounts `json:"sources"`
	Keysets    map[string]int         `json:"keysets"`
	Needed     int                    `json:"needed_ids"`
	Resolved   int                    `json:"resolved_ids"`
	EmptySoup  int                    `json:"empty_soup"`
	Outputs    []FileEntry            `json:"outputs"`
}

// Entry turns a committed table into a manifest entry.
func Entry(w *Written, b Budget, over bool) FileEntry {
	return FileEntry{
		Path:       w.Path,
		Rows:       w.Rows,
		Bytes:      w.Bytes,
		XXH3:       w.Digest,
		Budget:     b.Limit,
		OverBudget: over,
	}
}

// WriteManifest writes m as indented JSON to path, replacing any prior file.
func WriteManifest(path string, m *Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest.*.tmp")
	if err != nil {
		return fmt.Errorf("manifest: create: %w", err)
	}
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("manifest: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("manifest: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("manifest: rename: %w", err)
	}
	return nil
}
