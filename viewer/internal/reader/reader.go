package reader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bugmatrix/bugmatrix/internal/snapshot"
	"github.com/bugmatrix/bugmatrix/viewer/internal/config"
)

// State is the reader's refresh state.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateRefreshing State = "refreshing"
	StateStale      State = "stale"
)

// View is an immutable copy of the reader's current state, handed to the
// API layer. Snapshot is nil only before the first refresh completes.
type View struct {
	State     State
	Snapshot  *snapshot.Snapshot
	FetchedAt time.Time // when the current snapshot was applied
	Fallback  bool      // true while the embedded fallback is displayed
	LastError string    // most recent fetch error, empty when healthy
}

// Age returns how old the displayed data is, relative to now.
func (v View) Age(now time.Time) time.Duration {
	if v.Snapshot == nil {
		return 0
	}
	return now.Sub(v.Snapshot.GeneratedAt)
}

// Reader polls the artifact URL and owns the viewer's snapshot copy.
// All exported methods are safe for concurrent use.
type Reader struct {
	url      string
	interval time.Duration
	timeout  time.Duration
	client   *http.Client
	now      func() time.Time // injectable for deterministic tests

	mu        sync.Mutex
	gen       uint64 // newest issued refresh generation
	state     State
	snap      *snapshot.Snapshot
	fetchedAt time.Time
	fallback  bool
	lastErr   error
}

// New returns a Reader in the loading state. Nothing is fetched until
// Refresh or Run is called.
func New(cfg config.ViewerConfig) *Reader {
	return &Reader{
		url:      cfg.ArtifactURL,
		interval: cfg.RefreshInterval,
		timeout:  cfg.FetchTimeout,
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		now:      time.Now,
		state:    StateLoading,
	}
}

// Run polls the artifact on the refresh interval until ctx is cancelled.
// Each tick starts an independent refresh; one that outlives its interval
// is superseded by the next and its result discarded.
func (r *Reader) Run(ctx context.Context) {
	r.Refresh(ctx)

	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go r.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch-and-apply cycle. Safe to call concurrently;
// only the newest refresh's result is applied.
func (r *Reader) Refresh(ctx context.Context) {
	gen := r.beginRefresh()

	fctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snap, err := r.fetch(fctx)
	r.apply(gen, snap, err)
}

// View returns a copy of the current state for the API layer.
func (r *Reader) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := View{
		State:     r.state,
		Snapshot:  r.snap,
		FetchedAt: r.fetchedAt,
		Fallback:  r.fallback,
	}
	if r.lastErr != nil {
		v.LastError = r.lastErr.Error()
	}
	return v
}

// beginRefresh issues a new refresh generation and moves ready -> refreshing.
// Loading and stale keep their state during a re-poll.
func (r *Reader) beginRefresh() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	if r.state == StateReady {
		r.state = StateRefreshing
	}
	return r.gen
}

// apply installs a refresh result unless a newer refresh has started since
// gen was issued — a superseded response is dropped, never merged.
func (r *Reader) apply(gen uint64, snap *snapshot.Snapshot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		slog.Debug("reader: discarding superseded refresh", "gen", gen, "newest", r.gen)
		return
	}

	if err != nil {
		r.lastErr = err
		r.state = StateStale
		if r.snap == nil {
			// Nothing ever loaded — fall back to the embedded copy so the
			// client has something to show under the staleness indicator.
			if fb, fbErr := fallbackSnapshot(); fbErr == nil {
				r.snap = fb
				r.fetchedAt = r.now()
				r.fallback = true
			} else {
				slog.Error("reader: embedded fallback unusable", "err", fbErr)
			}
		}
		slog.Warn("reader: refresh failed — serving last known good", "err", err)
		return
	}

	r.snap = snap
	r.fetchedAt = r.now()
	r.fallback = false
	r.lastErr = nil
	r.state = StateReady
	slog.Debug("reader: refreshed", "generated_at", snap.GeneratedAt, "run_id", snap.RunID)
}

// fetch retrieves and decodes the artifact. Plain paths (no scheme) read
// the local filesystem for same-host deployments; everything else is an
// HTTP GET with cache-defeating semantics.
func (r *Reader) fetch(ctx context.Context) (*snapshot.Snapshot, error) {
	if !strings.Contains(r.url, "://") {
		return snapshot.Read(r.url)
	}

	// Nonce query param plus no-cache headers: the caller must never see a
	// copy older than one refresh interval from an intermediary cache.
	sep := "?"
	if strings.Contains(r.url, "?") {
		sep = "&"
	}
	url := fmt.Sprintf("%s%s_=%d", r.url, sep, r.now().UnixNano())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("reader: build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reader: fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reader: fetch artifact: unexpected status %d", resp.StatusCode)
	}
	return snapshot.Decode(resp.Body)
}
