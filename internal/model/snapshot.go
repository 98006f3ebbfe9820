package model

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// SnapshotMetadata describes where and when a facility snapshot came from.
type SnapshotMetadata struct {
	SourceFile      string `json:"source_file"`
	SourceDate      string `json:"source_date,omitempty"` // YYYY-MM-DD from the workbook filename
	ExtractionDate  string `json:"extraction_date"`
	TotalFacilities int    `json:"total_facilities"`
}

// Snapshot is one pipeline stage's record file: the facility records from a
// single workbook plus run metadata.
type Snapshot struct {
	Metadata   SnapshotMetadata `json:"metadata"`
	Facilities []FacilityRecord `json:"facilities"`
}

// WriteSnapshot writes the snapshot as pretty-printed JSON, creating parent
// directories as needed.
func WriteSnapshot(snap *Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return eris.Wrap(err, "model: marshal snapshot")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "model: create snapshot dir")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "model: write snapshot")
	}
	return nil
}

// ReadSnapshot loads a snapshot file written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "model: read snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, eris.Wrapf(err, "model: parse snapshot %s", path)
	}
	return &snap, nil
}
