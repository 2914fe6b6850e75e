package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Write publishes snap to path atomically: the document is written to a
// temp file in the destination directory, fsynced, then renamed over the
// destination. On any failure the previous artifact at path is left
// untouched and the temp file is removed.
func Write(path string, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("snapshot: refusing to publish invalid snapshot: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create output dir: %w", err)
	}

	// Temp file must live in the same directory as the destination so the
	// final rename stays on one filesystem and is atomic.
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: publish: %w", err)
	}
	return nil
}

// Read loads and validates the Snapshot at path.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
