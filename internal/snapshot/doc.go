// Package snapshot defines the published artifact contract between the
// collector and the viewer: the versioned Snapshot document, an atomic
// file writer, and a strict decoder.
//
// The artifact is the only channel between producer and consumer. Write
// publishes via temp-file-then-rename so a concurrent reader observes
// either the previous complete document or the new complete document,
// never a partial one. Decode rejects documents whose schema_version this
// build does not understand, letting the consumer fall back gracefully.
package snapshot
