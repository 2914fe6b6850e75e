package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bugmatrix/bugmatrix/collector/internal/aggregate"
	"github.com/bugmatrix/bugmatrix/collector/internal/classify"
	"github.com/bugmatrix/bugmatrix/collector/internal/config"
	"github.com/bugmatrix/bugmatrix/collector/internal/jira"
	"github.com/bugmatrix/bugmatrix/internal/snapshot"
)

// Fetcher yields the raw issue sequence for one run. *jira.Client is the
// production implementation.
type Fetcher interface {
	Search(ctx context.Context, visit func(jira.Issue) error) error
}

// Pipeline runs the fetch → classify → aggregate → publish batch. Build it
// once; Run may be invoked repeatedly (daemon mode) or once per process
// (cron mode) — the lock keeps overlapping invocations from racing.
type Pipeline struct {
	cfg     config.CollectorConfig
	fetcher Fetcher
	rules   *classify.RuleSet
	now     func() time.Time // injectable for deterministic tests
}

// New assembles a Pipeline from config. The classification rule set is the
// built-in one unless the config names an override file.
func New(cfg config.CollectorConfig, fetcher Fetcher) (*Pipeline, error) {
	rules := classify.DefaultRuleSet()
	if cfg.RulesPath != "" {
		loaded, err := classify.LoadRuleSet(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		slog.Info("pipeline: using rule override", "path", cfg.RulesPath, "version", loaded.Version)
		rules = loaded
	}
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		rules:   rules,
		now:     time.Now,
	}, nil
}

// Run executes one pipeline run. ErrLocked means another run is in flight
// and this one was skipped — the caller should not treat that as failure.
// Every other error aborted the run before publication.
func (p *Pipeline) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	release, err := acquireLock(p.cfg.LockPath, p.cfg.LockTTL, p.now)
	if err != nil {
		return nil, err
	}
	defer release()

	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	log.Info("pipeline: run starting", "project", p.cfg.Jira.Project)

	agg := aggregate.New(p.rules)
	if err := p.fetcher.Search(ctx, agg.Add); err != nil {
		log.Error("pipeline: fetch failed, aborting run", "err", err)
		return nil, err
	}

	res := agg.Result()
	if res.SkippedNonBug > 0 {
		log.Warn("pipeline: upstream returned non-Bug records despite the type filter",
			"skipped", res.SkippedNonBug)
	}

	snap := &snapshot.Snapshot{
		SchemaVersion:       snapshot.SchemaVersion,
		GeneratedAt:         p.now().UTC(),
		Project:             p.cfg.Jira.Project,
		RunID:               runID,
		Matrix:              res.Matrix,
		Totals:              res.Matrix.Totals(),
		GrandTotal:          res.Matrix.GrandTotal(),
		TotalIssuesScanned:  res.Scanned,
		UnclassifiedCount:   res.Unclassified,
		StatusExcludedCount: res.StatusExcluded,
	}

	if err := snapshot.Write(p.cfg.OutputPath, snap); err != nil {
		log.Error("pipeline: publish failed, previous artifact remains authoritative", "err", err)
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	log.Info("pipeline: run complete",
		"scanned", snap.TotalIssuesScanned,
		"classified", snap.GrandTotal,
		"unclassified", snap.UnclassifiedCount,
		"status_excluded", snap.StatusExcludedCount,
		"output", p.cfg.OutputPath,
	)
	return snap, nil
}
