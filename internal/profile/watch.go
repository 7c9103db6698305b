package profile

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor emits per save.
const watchDebounce = 150 * time.Millisecond

// Watch re-loads the profile whenever the file at path changes and delivers
// it on the returned channel until ctx is done. The parent directory is
// watched rather than the file itself, so atomic-rename saves and a file
// created after Watch starts are both picked up.
//
// The channel holds one pending profile; when a newer one arrives before the
// consumer reads, the stale one is dropped.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan Profile, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	updates := make(chan Profile, 1)
	go func() {
		defer watcher.Close()
		defer close(updates)

		var debounce *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(watchDebounce)
				} else {
					debounce.Reset(watchDebounce)
				}
				fire = debounce.C
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("profile watcher error", "error", err)
			case <-fire:
				fire = nil
				p, err := Load(path)
				if err != nil {
					logger.Warn("profile changed but could not be loaded, keeping previous",
						"path", path, "error", err)
					continue
				}
				// Replace any unread update with the newer one.
				select {
				case <-updates:
				default:
				}
				updates <- p
				logger.Debug("profile reloaded", "path", path, "mappings", len(p.Mappings))
			}
		}
	}()
	return updates, nil
}
