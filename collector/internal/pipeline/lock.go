package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrLocked is returned by acquireLock while another run holds a live
// lock. The caller skips the run; nothing needs repair.
var ErrLocked = errors.New("pipeline: another run is in flight")

// acquireLock takes the run-level mutual-exclusion lock at path. The lock
// is a file created with O_EXCL holding the owner's pid and start time.
//
// A lock older than ttl is treated as abandoned by a crashed run and taken
// over. Returns a release func that removes the lock.
func acquireLock(path string, ttl time.Duration, now func() time.Time) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create lock dir: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "pid=%d started=%s\n", os.Getpid(), now().UTC().Format(time.RFC3339))
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("pipeline: create lock: %w", err)
		}

		info, statErr := os.Stat(path)
		if statErr != nil {
			if os.IsNotExist(statErr) {
				continue // holder released between OpenFile and Stat; retry
			}
			return nil, fmt.Errorf("pipeline: stat lock: %w", statErr)
		}
		if now().Sub(info.ModTime()) < ttl {
			return nil, ErrLocked
		}

		// Stale lock from a crashed run — take it over.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("pipeline: remove stale lock: %w", err)
		}
	}
	return nil, ErrLocked
}
