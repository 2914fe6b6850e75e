// Package matrix holds the shared vocabulary of the bug dashboard: the
// fixed platform and status enumerations and the platform × status count
// matrix both the collector and the viewer speak.
//
// Platforms() and Statuses() define the one canonical ordering. Every
// serialization of a Matrix iterates those slices, never a Go map, so the
// same aggregation always produces byte-identical JSON.
package matrix
