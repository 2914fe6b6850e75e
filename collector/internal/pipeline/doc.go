// Package pipeline orchestrates one collector run: acquire the run lock,
// stream issues from the fetcher through the aggregator in a single pass,
// assemble the snapshot, and publish it atomically.
//
// The lock gives the external scheduler an idempotent entry point:
// overlapping triggers skip instead of interleaving writes. Any stage
// failure aborts the run with no partial publication — the previous
// artifact remains authoritative.
package pipeline
