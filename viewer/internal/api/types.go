package api

import "github.com/bugmatrix/bugmatrix/internal/snapshot"

// MatrixResponse is the payload for GET /api/v1/matrix.
type MatrixResponse struct {
	State      string             `json:"state"`
	Fallback   bool               `json:"fallback,omitempty"`
	AgeSeconds float64            `json:"age_seconds"`
	LastError  string             `json:"last_error,omitempty"`
	Snapshot   *snapshot.Snapshot `json:"snapshot"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State       string  `json:"state"`
	Stale       bool    `json:"stale"`
	AgeSeconds  float64 `json:"age_seconds"`
	GeneratedAt string  `json:"generated_at,omitempty"` // RFC3339
	RunID       string  `json:"run_id,omitempty"`
	LastError   string  `json:"last_error,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
