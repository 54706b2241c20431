package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce interval for editors that write config files in several events
const watchSettle = 250 * time.Millisecond

// Watch re-reads the config file whenever it changes and calls apply with
// each successfully parsed result. Invalid or unreadable edits are logged and
// ignored, leaving the last good configuration active. Watch blocks until
// ctx is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files, which drops a watch on
	// the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	log := logger.With("component", "config")
	log.Debug("Watching config file", "path", path)

	var settle *time.Timer
	var settleCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(watchSettle)
			} else {
				settle.Reset(watchSettle)
			}
			settleCh = settle.C

		case <-settleCh:
			settleCh = nil
			cfg, err := LoadFromFile(path, true)
			if err != nil {
				log.Warn("Ignoring invalid config change", "error", err)
				continue
			}
			log.Info("Configuration reloaded", "path", path)
			apply(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Config watcher error", "error", err)
		}
	}
}
