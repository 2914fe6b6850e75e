package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bugmatrix/bugmatrix/internal/matrix"
)

// SchemaVersion is the artifact schema this build reads and writes.
// Bump it on any incompatible change to the Snapshot shape.
const SchemaVersion = 1

// ErrSchema is returned by Decode when the document carries a schema
// version this build does not understand.
var ErrSchema = fmt.Errorf("snapshot: unsupported schema version")

// Snapshot is one pipeline run's aggregated result. A fresh Snapshot fully
// supersedes the previous one; the core keeps no history.
type Snapshot struct {
	SchemaVersion int       `json:"schema_version"`
	GeneratedAt   time.Time `json:"generated_at"`
	Project       string    `json:"project"`
	RunID         string    `json:"run_id"`

	Matrix *matrix.Matrix `json:"matrix"`

	// Totals is the per-platform row total; GrandTotal the sum of every
	// cell. Both are derivable from Matrix but published explicitly so
	// thin clients never re-aggregate.
	Totals     map[matrix.Platform]int `json:"totals"`
	GrandTotal int                     `json:"grand_total"`

	// TotalIssuesScanned counts every Bug-type issue consumed by the run.
	// UnclassifiedCount counts scanned issues with a recognized status but
	// no matching platform rule. StatusExcludedCount counts scanned issues
	// dropped for an unrecognized status. The three buckets partition the
	// scanned set:
	//
	//	GrandTotal + UnclassifiedCount + StatusExcludedCount == TotalIssuesScanned
	TotalIssuesScanned  int `json:"total_issues_scanned"`
	UnclassifiedCount   int `json:"unclassified_count"`
	StatusExcludedCount int `json:"status_excluded_count"`
}

// Validate checks structural integrity and the scan accounting identity.
func (s *Snapshot) Validate() error {
	if s.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSchema, s.SchemaVersion, SchemaVersion)
	}
	if s.Matrix == nil {
		return fmt.Errorf("snapshot: missing matrix")
	}
	if s.GeneratedAt.IsZero() {
		return fmt.Errorf("snapshot: missing generated_at")
	}
	if s.GrandTotal != s.Matrix.GrandTotal() {
		return fmt.Errorf("snapshot: grand_total %d does not match matrix sum %d",
			s.GrandTotal, s.Matrix.GrandTotal())
	}
	for _, p := range matrix.Platforms() {
		if got, want := s.Totals[p], s.Matrix.PlatformTotal(p); got != want {
			return fmt.Errorf("snapshot: totals[%s] %d does not match matrix row sum %d",
				p, got, want)
		}
	}
	if got := s.GrandTotal + s.UnclassifiedCount + s.StatusExcludedCount; got != s.TotalIssuesScanned {
		return fmt.Errorf("snapshot: scan accounting broken: %d classified + %d unclassified + %d excluded != %d scanned",
			s.GrandTotal, s.UnclassifiedCount, s.StatusExcludedCount, s.TotalIssuesScanned)
	}
	return nil
}

// Decode reads one Snapshot document from r and validates it.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
