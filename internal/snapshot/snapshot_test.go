package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bugmatrix/bugmatrix/internal/matrix"
)

var baseTime = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

// validSnapshot builds a snapshot whose counters satisfy the accounting
// identity: 2 classified + 1 unclassified + 1 status-excluded = 4 scanned.
func validSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	m := matrix.New()
	if err := m.Inc(matrix.PlatformAndroid, matrix.StatusOpen); err != nil {
		t.Fatal(err)
	}
	if err := m.Inc(matrix.PlatformLGTV, matrix.StatusParked); err != nil {
		t.Fatal(err)
	}
	return &Snapshot{
		SchemaVersion:       SchemaVersion,
		GeneratedAt:         baseTime,
		Project:             "VZY",
		RunID:               "run-1",
		Matrix:              m,
		Totals:              m.Totals(),
		GrandTotal:          m.GrandTotal(),
		TotalIssuesScanned:  4,
		UnclassifiedCount:   1,
		StatusExcludedCount: 1,
	}
}

// --- validation --------------------------------------------------------------

func TestValidate_AcceptsConsistentSnapshot(t *testing.T) {
	if err := validSnapshot(t).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_RejectsBrokenAccounting(t *testing.T) {
	s := validSnapshot(t)
	s.UnclassifiedCount = 5
	if err := s.Validate(); err == nil {
		t.Error("Validate() should reject counters that do not sum to scanned")
	}
}

func TestValidate_RejectsWrongGrandTotal(t *testing.T) {
	s := validSnapshot(t)
	s.GrandTotal = 99
	s.TotalIssuesScanned = 101
	if err := s.Validate(); err == nil {
		t.Error("Validate() should reject grand_total that differs from the matrix sum")
	}
}

func TestValidate_RejectsSkewedPlatformTotals(t *testing.T) {
	s := validSnapshot(t)
	s.Totals[matrix.PlatformAndroid] = 7 // matrix row sums to 1
	if err := s.Validate(); err == nil {
		t.Error("Validate() should reject per-platform totals that differ from the matrix rows")
	}
}

func TestValidate_RejectsForeignSchemaVersion(t *testing.T) {
	s := validSnapshot(t)
	s.SchemaVersion = 2
	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() should reject schema_version 2")
	}
	if !strings.Contains(err.Error(), "schema") {
		t.Errorf("error should mention the schema: %v", err)
	}
}

// --- decode ------------------------------------------------------------------

func TestDecode_MalformedBody(t *testing.T) {
	if _, err := Decode(strings.NewReader("<html>502 Bad Gateway</html>")); err == nil {
		t.Error("Decode of non-JSON body should fail")
	}
}

// --- atomic write ------------------------------------------------------------

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.json")
	want := validSnapshot(t)

	if err := Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !got.GeneratedAt.Equal(want.GeneratedAt) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, want.GeneratedAt)
	}
	if got.Matrix.Cell(matrix.PlatformLGTV, matrix.StatusParked) != 1 {
		t.Error("LG_TV/PARKED cell lost in round trip")
	}
	if got.TotalIssuesScanned != 4 || got.UnclassifiedCount != 1 {
		t.Errorf("counters lost: scanned=%d unclassified=%d",
			got.TotalIssuesScanned, got.UnclassifiedCount)
	}
}

func TestWrite_ReplacesPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	first := validSnapshot(t)
	if err := Write(path, first); err != nil {
		t.Fatalf("first Write: %v", err)
	}

	second := validSnapshot(t)
	second.RunID = "run-2"
	second.GeneratedAt = baseTime.Add(30 * time.Minute)
	if err := Write(path, second); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.RunID != "run-2" {
		t.Errorf("RunID = %q, want run-2 (previous artifact must be fully superseded)", got.RunID)
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Write(filepath.Join(dir, "snapshot.json"), validSnapshot(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".snapshot-") {
			t.Errorf("temp file %s left behind after publish", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the artifact", len(entries))
	}
}

func TestWrite_RefusesInvalidSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	bad := validSnapshot(t)
	bad.TotalIssuesScanned = 0 // breaks the accounting identity

	if err := Write(path, bad); err == nil {
		t.Fatal("Write should refuse to publish an inconsistent snapshot")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed publish must not leave any artifact behind")
	}
}

func TestWrite_ConcurrentReaderSeesOnlyConsistentSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	// Each published run keys its run_id to its counters, so a torn read
	// would surface as a cross-run mix even if it happened to parse.
	publish := func(n int) {
		t.Helper()
		m := matrix.New()
		for i := 0; i < n; i++ {
			if err := m.Inc(matrix.PlatformWeb, matrix.StatusOpen); err != nil {
				t.Fatal(err)
			}
		}
		s := &Snapshot{
			SchemaVersion:      SchemaVersion,
			GeneratedAt:        baseTime.Add(time.Duration(n) * time.Minute),
			Project:            "VZY",
			RunID:              fmt.Sprintf("run-%d", n),
			Matrix:             m,
			Totals:             m.Totals(),
			GrandTotal:         n,
			TotalIssuesScanned: n,
		}
		if err := Write(path, s); err != nil {
			t.Fatalf("Write run-%d: %v", n, err)
		}
	}
	publish(0)

	stop := make(chan struct{})
	fail := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// Read validates, so any torn or partial document fails here.
			s, err := Read(path)
			if err != nil {
				fail <- fmt.Errorf("concurrent Read: %w", err)
				return
			}
			if want := fmt.Sprintf("run-%d", s.GrandTotal); s.RunID != want {
				fail <- fmt.Errorf("torn read: run_id %s with grand_total %d", s.RunID, s.GrandTotal)
				return
			}
		}
	}()

	for n := 1; n <= 50; n++ {
		publish(n)
	}
	close(stop)
	wg.Wait()

	select {
	case err := <-fail:
		t.Fatal(err)
	default:
	}
}

func TestWrite_FailedPublishKeepsPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := Write(path, validSnapshot(t)); err != nil {
		t.Fatalf("seed Write: %v", err)
	}

	bad := validSnapshot(t)
	bad.Matrix = nil
	if err := Write(path, bad); err == nil {
		t.Fatal("Write of a snapshot without a matrix should fail")
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("previous artifact unreadable after failed publish: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("RunID = %q, want the pre-failure run-1", got.RunID)
	}
}
