package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bugmatrix/bugmatrix/viewer/internal/reader"
)

// ViewProvider supplies the reader's current view. *reader.Reader is the
// production implementation.
type ViewProvider interface {
	View() reader.View
}

// Handler is the HTTP handler for the viewer's read-only endpoints.
type Handler struct {
	views ViewProvider
	mux   *http.ServeMux
	now   func() time.Time // injectable for deterministic tests
}

// New creates a Handler wired to the given view provider and registers all
// routes.
func New(views ViewProvider) http.Handler {
	h := &Handler{views: views, mux: http.NewServeMux(), now: time.Now}

	h.mux.HandleFunc("/api/v1/matrix", h.matrix)
	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// matrix returns GET /api/v1/matrix — the full snapshot plus reader state.
func (h *Handler) matrix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v := h.views.View()
	if v.Snapshot == nil {
		jsonErr(w, http.StatusServiceUnavailable, "snapshot not yet loaded")
		return
	}

	jsonResp(w, http.StatusOK, MatrixResponse{
		State:      string(v.State),
		Fallback:   v.Fallback,
		AgeSeconds: v.Age(h.now()).Seconds(),
		LastError:  v.LastError,
		Snapshot:   v.Snapshot,
	})
}

// health returns GET /api/v1/health — reader state and artifact age.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v := h.views.View()
	resp := HealthResponse{
		State:     string(v.State),
		Stale:     v.State == reader.StateStale,
		LastError: v.LastError,
	}
	if v.Snapshot != nil {
		resp.AgeSeconds = v.Age(h.now()).Seconds()
		resp.GeneratedAt = v.Snapshot.GeneratedAt.Format(time.RFC3339)
		resp.RunID = v.Snapshot.RunID
	}
	jsonResp(w, http.StatusOK, resp)
}

// --- helpers ------------------------------------------------------------------

func jsonResp(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, status int, msg string) {
	jsonResp(w, status, errorResponse{Error: msg})
}
