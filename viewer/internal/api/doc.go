// Package api implements the viewer's read-only HTTP surface.
//
// New(views) returns an http.Handler that serves:
//
//	GET /api/v1/matrix  — current snapshot plus reader state and age
//	GET /api/v1/health  — reader state, staleness, artifact age
//	GET /metrics        — Prometheus text exposition of the matrix
//
// All endpoints respond with Content-Type: application/json (except
// /metrics) and 405 for non-GET methods. The API never writes the
// artifact; it only reflects the reader's view.
package api
