package aggregate

import (
	"fmt"
	"strings"

	"github.com/bugmatrix/bugmatrix/collector/internal/classify"
	"github.com/bugmatrix/bugmatrix/collector/internal/jira"
	"github.com/bugmatrix/bugmatrix/internal/matrix"
)

// bugType is the only issue type counted. The search filter already asks
// for Bugs, but the upstream filter is not trusted — the check is repeated
// here so a lax JQL evaluation cannot skew the matrix.
const bugType = "bug"

// Result is the outcome of one aggregation pass.
type Result struct {
	Matrix *matrix.Matrix

	// Scanned counts every Bug-type issue consumed.
	Scanned int

	// Unclassified counts scanned issues with a recognized status that
	// matched no platform rule. A steady share of these is expected.
	Unclassified int

	// StatusExcluded counts scanned issues dropped for an unrecognized
	// status. Tracked separately from Unclassified to keep the scan
	// accounting auditable.
	StatusExcluded int

	// SkippedNonBug counts non-Bug records the upstream returned despite
	// the type filter. Logged, never aggregated.
	SkippedNonBug int
}

// Aggregator folds issues into a Result. Not safe for concurrent use; the
// pipeline is a single sequential pass by design.
type Aggregator struct {
	rules *classify.RuleSet
	res   Result
}

// New returns an Aggregator classifying with the given rule set.
func New(rules *classify.RuleSet) *Aggregator {
	return &Aggregator{
		rules: rules,
		res:   Result{Matrix: matrix.New()},
	}
}

// Add consumes one issue. It never fails on classification outcomes —
// unclassified and status-excluded are expected buckets — only on internal
// inconsistency between the rule set and the matrix vocabulary.
func (a *Aggregator) Add(is jira.Issue) error {
	if !strings.EqualFold(is.Type, bugType) {
		a.res.SkippedNonBug++
		return nil
	}
	a.res.Scanned++

	status, ok := classify.Status(is.Status)
	if !ok {
		a.res.StatusExcluded++
		return nil
	}

	platform := a.rules.Platform(is)
	if platform == matrix.PlatformUnclassified {
		a.res.Unclassified++
		return nil
	}

	if err := a.res.Matrix.Inc(platform, status); err != nil {
		return fmt.Errorf("aggregate: issue %s: %w", is.Key, err)
	}
	return nil
}

// Result returns the accumulated counts. An Aggregator that consumed
// nothing yields a valid zero matrix.
func (a *Aggregator) Result() Result {
	return a.res
}
