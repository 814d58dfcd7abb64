// Package history implements the Persistence Store: it loads and saves the
// bounded, newest-last ring of JobHistoryRecord as a single JSON file on
// disk (spec.md §4.6). The in-memory ring itself lives in coordinator.State.
package history

import (
	"encoding/json"
	"os"

	"github.com/noctiluca/rendermanager/internal/coordinator"
	"github.com/noctiluca/rendermanager/internal/logging"
)

// Cap is the maximum number of history entries retained, per spec.md §3.
const Cap = 50

// Store persists JobHistoryRecords as a single pretty-printed JSON array.
type Store struct {
	path string
}

// NewStore returns a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the file if present, keeping at most the newest Cap entries. On
// any read or parse error it logs and returns an empty ring rather than
// failing startup (spec.md §4.6, §7: persistence failures never crash the
// Manager).
func (s *Store) Load() []coordinator.JobHistoryRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.ErrorWithComponent(logging.ComponentHistory, "failed to read history file", "path", s.path, "error", err)
		}
		return nil
	}

	var records []coordinator.JobHistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logging.ErrorWithComponent(logging.ComponentHistory, "failed to parse history file, starting with empty history", "path", s.path, "error", err)
		return nil
	}

	if len(records) > Cap {
		records = records[len(records)-Cap:]
	}
	return records
}

// Save overwrites the file with the full ring, pretty-printed. Writing is
// not atomic across processes — this store is single-process by design
// (spec.md §4.6) — but a fresh file is always written in full so a crash
// mid-write is the only way to leave a truncated file on disk.
func (s *Store) Save(records []coordinator.JobHistoryRecord) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logging.ErrorWithComponent(logging.ComponentHistory, "failed to marshal history", "error", err)
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		logging.ErrorWithComponent(logging.ComponentHistory, "failed to write history file", "path", s.path, "error", err)
	}
}
