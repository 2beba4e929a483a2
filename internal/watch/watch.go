// Package watch reruns a batch whenever its input files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events editors emit for a single save.
const DefaultDebounce = 300 * time.Millisecond

// Run calls fn once, then again after each write to any of paths, until ctx
// is done. Parent directories are watched rather than the files themselves so
// that editors replacing a file through rename are still noticed.
func Run(ctx context.Context, paths []string, debounce time.Duration, fn func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	fn(ctx)
	slog.Info("Watching for changes", slog.Any("files", paths))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("File changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			pending = time.After(debounce)
		case <-pending:
			pending = nil
			slog.Info("Change detected, regenerating")
			fn(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", slog.String("error", err.Error()))
		}
	}
}
