// Package aggregate folds the fetched issue stream into the platform ×
// status matrix in a single linear pass.
//
// Each issue lands in exactly one bucket: a matrix cell (known platform +
// recognized status), the unclassified counter (recognized status, no
// platform rule matched), or the status-excluded counter (unrecognized
// status — dropped from the matrix entirely). Non-Bug records are skipped
// without touching the scan counters, so the accounting identity
//
//	classified + unclassified + status-excluded == scanned
//
// holds for every run. Aggregation is commutative over arrival order and
// its serialized output is deterministic.
package aggregate
