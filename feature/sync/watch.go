package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch blocks watching for a trigger file and invokes run each time the
// file appears or changes. The trigger file is removed after each run so
// the next touch fires again. Run errors are logged, not fatal: a failed
// run must not kill the watcher.
func Watch(ctx context.Context, trigger string, log *zap.Logger, run func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(trigger)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create trigger directory %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Info("watching for sync trigger", zap.String("trigger", trigger))

	// A trigger left behind by a previous run counts as pending work.
	if _, err := os.Stat(trigger); err == nil {
		fire(ctx, trigger, log, run)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(trigger) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			fire(ctx, trigger, log, run)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			log.Error("watcher error", zap.Error(err))
		}
	}
}

func fire(ctx context.Context, trigger string, log *zap.Logger, run func(context.Context) error) {
	log.Info("sync triggered", zap.String("trigger", trigger))

	if err := run(ctx); err != nil {
		log.Error("triggered sync failed", zap.Error(err))
	}

	if err := os.Remove(trigger); err != nil && !os.IsNotExist(err) {
		log.Error("cannot remove trigger file", zap.Error(err))
	}
}
