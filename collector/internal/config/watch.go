package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the collector config at path and calls onChange with each
// successfully reloaded Config until ctx is cancelled. A rewrite that fails
// to parse or validate is logged and dropped — the previous config stays in
// effect and onChange is not called for it.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload rejected — previous config stays in effect",
					"path", path, "err", err)
				continue
			}

			slog.Info("config: reloaded",
				"project", cfg.Collector.Jira.Project,
				"interval", cfg.Collector.Interval,
				"output", cfg.Collector.OutputPath,
				"rules_path", cfg.Collector.RulesPath,
			)
			onChange(cfg)

			// An atomic save replaces the inode; re-arm the watch on the
			// new file.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
