package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bugmatrix/bugmatrix/collector/internal/config"
	"github.com/bugmatrix/bugmatrix/collector/internal/jira"
	"github.com/bugmatrix/bugmatrix/collector/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one pipeline pass and exit (cron mode)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Credentials arrive out-of-band; a .env file is one accepted channel.
	_ = godotenv.Load()

	slog.Info("bugmatrix-collector starting", "config", *configPath, "once", *once)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if cfg.Collector.Jira.Email() == "" || cfg.Collector.Jira.Token() == "" {
		slog.Error("missing credentials",
			"email_env", cfg.Collector.Jira.EmailEnv,
			"token_env", cfg.Collector.Jira.TokenEnv,
		)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"domain", cfg.Collector.Jira.Domain,
		"project", cfg.Collector.Jira.Project,
		"interval", cfg.Collector.Interval,
		"output", cfg.Collector.OutputPath,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := jira.NewClient(cfg.Collector.Jira)
	p, err := pipeline.New(cfg.Collector, client)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		os.Exit(1)
	}

	if *once {
		os.Exit(runOnce(ctx, p))
	}

	// Daemon mode: the same locked entry point on a ticker. Config changes
	// are watched and logged; rules and credentials take effect on restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded — restart to apply",
				"project", updated.Collector.Jira.Project)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	runOnce(ctx, p) // first pass immediately, then on the interval

	ticker := time.NewTicker(cfg.Collector.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("bugmatrix-collector shutting down")
			return
		case <-ticker.C:
			runOnce(ctx, p)
		}
	}
}

// runOnce executes one pipeline pass and maps the outcome onto an exit
// code for the external scheduler: 0 for success or a skipped overlapping
// run, 1 for any failure. Failures are loud; the invoker alerts on them.
func runOnce(ctx context.Context, p *pipeline.Pipeline) int {
	snap, err := p.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrLocked):
		slog.Warn("run skipped — previous run still in flight")
		return 0
	case errors.Is(err, jira.ErrAuth):
		slog.Error("run failed: credentials rejected — rotate the API token", "err", err)
		return 1
	case errors.Is(err, jira.ErrUnavailable):
		slog.Error("run failed: upstream unavailable — next scheduled run will retry", "err", err)
		return 1
	case err != nil:
		slog.Error("run failed", "err", err)
		return 1
	}
	slog.Info("run succeeded",
		"generated_at", snap.GeneratedAt,
		"scanned", snap.TotalIssuesScanned,
	)
	return 0
}
