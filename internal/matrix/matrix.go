package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Platform identifies one delivery platform tracked on the dashboard.
type Platform string

// The fixed set of known platforms. Display names match the upstream
// project's component naming, including the mixed-case ones.
const (
	PlatformAndroid      Platform = "ANDROID"
	PlatformATV          Platform = "ATV"
	PlatformCMSAdaptor   Platform = "CMS Adaptor"
	PlatformCMSDashboard Platform = "CMS Dashboard"
	PlatformDishIT       Platform = "DishIT"
	PlatformIOS          Platform = "IOS"
	PlatformLGTV         Platform = "LG_TV"
	PlatformSamsungTV    Platform = "SAM_TV"
	PlatformWeb          Platform = "WEB"

	// PlatformUnclassified is the sentinel returned when no classification
	// rule matches. It is an expected outcome, not an error, and never
	// appears as a matrix row.
	PlatformUnclassified Platform = "UNCLASSIFIED"
)

// Status identifies one recognized workflow status. Issues in any other
// status are excluded from the matrix entirely.
type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusInProgress    Status = "IN PROGRESS"
	StatusReopened      Status = "REOPENED"
	StatusInReview      Status = "IN REVIEW"
	StatusIssueAccepted Status = "ISSUE ACCEPTED"
	StatusParked        Status = "PARKED"
)

// platformOrder is the canonical serialization order for matrix rows.
var platformOrder = []Platform{
	PlatformAndroid,
	PlatformATV,
	PlatformCMSAdaptor,
	PlatformCMSDashboard,
	PlatformDishIT,
	PlatformIOS,
	PlatformLGTV,
	PlatformSamsungTV,
	PlatformWeb,
}

// statusOrder is the canonical serialization order for matrix columns.
var statusOrder = []Status{
	StatusOpen,
	StatusInProgress,
	StatusReopened,
	StatusInReview,
	StatusIssueAccepted,
	StatusParked,
}

// Platforms returns the known platforms in canonical order.
// Callers must not modify the returned slice.
func Platforms() []Platform { return platformOrder }

// Statuses returns the recognized statuses in canonical order.
// Callers must not modify the returned slice.
func Statuses() []Status { return statusOrder }

// KnownPlatform reports whether p is one of the fixed platform values
// (the Unclassified sentinel is not a known platform).
func KnownPlatform(p Platform) bool {
	for _, known := range platformOrder {
		if p == known {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s is one of the six recognized statuses.
func KnownStatus(s Status) bool {
	for _, known := range statusOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Matrix is the platform × status count table. The zero value is not
// usable; construct with New.
type Matrix struct {
	cells map[Platform]map[Status]int
}

// New returns a Matrix with every known cell initialized to zero.
func New() *Matrix {
	cells := make(map[Platform]map[Status]int, len(platformOrder))
	for _, p := range platformOrder {
		row := make(map[Status]int, len(statusOrder))
		for _, s := range statusOrder {
			row[s] = 0
		}
		cells[p] = row
	}
	return &Matrix{cells: cells}
}

// Inc increments the cell for (p, s). Unknown platforms or statuses are
// rejected so classification bugs surface in tests instead of producing
// phantom rows.
func (m *Matrix) Inc(p Platform, s Status) error {
	if !KnownPlatform(p) {
		return fmt.Errorf("matrix: unknown platform %q", p)
	}
	if !KnownStatus(s) {
		return fmt.Errorf("matrix: unknown status %q", s)
	}
	m.cells[p][s]++
	return nil
}

// Cell returns the count for (p, s). Unknown coordinates return zero.
func (m *Matrix) Cell(p Platform, s Status) int {
	row, ok := m.cells[p]
	if !ok {
		return 0
	}
	return row[s]
}

// PlatformTotal returns the sum of all status counts for one platform.
func (m *Matrix) PlatformTotal(p Platform) int {
	var total int
	for _, s := range statusOrder {
		total += m.cells[p][s]
	}
	return total
}

// Totals returns the per-platform totals in canonical platform order.
func (m *Matrix) Totals() map[Platform]int {
	out := make(map[Platform]int, len(platformOrder))
	for _, p := range platformOrder {
		out[p] = m.PlatformTotal(p)
	}
	return out
}

// GrandTotal returns the sum of every cell in the matrix.
func (m *Matrix) GrandTotal() int {
	var total int
	for _, p := range platformOrder {
		total += m.PlatformTotal(p)
	}
	return total
}

// MarshalJSON serializes the matrix as {platform: {status: count}} with
// rows and columns in the fixed enumeration order. The output for a given
// set of counts is byte-identical across runs.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range platformOrder {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(p))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteByte('{')
		for j, s := range statusOrder {
			if j > 0 {
				buf.WriteByte(',')
			}
			col, err := json.Marshal(string(s))
			if err != nil {
				return nil, err
			}
			buf.Write(col)
			buf.WriteByte(':')
			fmt.Fprintf(&buf, "%d", m.cells[p][s])
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the same {platform: {status: count}} shape.
// Unknown platforms or statuses in the document are rejected — a document
// that does not speak this vocabulary is from an incompatible producer.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw map[Platform]map[Status]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("matrix: decode: %w", err)
	}
	fresh := New()
	for p, row := range raw {
		if !KnownPlatform(p) {
			return fmt.Errorf("matrix: unknown platform %q in document", p)
		}
		for s, n := range row {
			if !KnownStatus(s) {
				return fmt.Errorf("matrix: unknown status %q in document", s)
			}
			if n < 0 {
				return fmt.Errorf("matrix: negative count %d for %s/%s", n, p, s)
			}
			fresh.cells[p][s] = n
		}
	}
	m.cells = fresh.cells
	return nil
}
