package reader

import (
	"bytes"
	_ "embed"

	"github.com/bugmatrix/bugmatrix/internal/snapshot"
)

// fallbackJSON is the last-known-good snapshot baked into the binary. It
// is served (flagged as fallback, in the stale state) when no artifact has
// ever been fetched successfully.
//
//go:embed fallback.json
var fallbackJSON []byte

func fallbackSnapshot() (*snapshot.Snapshot, error) {
	return snapshot.Decode(bytes.NewReader(fallbackJSON))
}
