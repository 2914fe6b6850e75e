package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bugmatrix/bugmatrix/viewer/internal/api"
	"github.com/bugmatrix/bugmatrix/viewer/internal/config"
	"github.com/bugmatrix/bugmatrix/viewer/internal/reader"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("bugmatrix-viewer starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"artifact_url", cfg.Viewer.ArtifactURL,
		"refresh_interval", cfg.Viewer.RefreshInterval,
		"http_port", cfg.Viewer.HTTPPort,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Reader polls the artifact in the background; the API only ever sees
	// its latest consistent view.
	rd := reader.New(cfg.Viewer)
	go rd.Run(ctx)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Viewer.HTTPPort),
		Handler: api.New(rd),
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Viewer.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("bugmatrix-viewer shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
