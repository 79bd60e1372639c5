package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dailyworkspace/daybook/internal/debug"
)

const watchDebounce = 500 * time.Millisecond

// Watch reloads the configuration whenever path changes and then calls
// onChange with the new snapshot. Edits that fail to parse are reported and
// ignored. Watch blocks until ctx is done.
//
// The directory is watched rather than the file so editors that replace the
// file on save are still seen.
func Watch(ctx context.Context, path string, onChange func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }() // Best effort cleanup

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if _, err := ReadLocalConfig(dir); err != nil {
				debug.Warnf("ignoring invalid %s: %v", path, err)
				continue
			}
			if err := Reload(); err != nil {
				debug.Warnf("config reload failed: %v", err)
				continue
			}
			debug.Logf("config: reloaded %s\n", path)
			onChange(Snapshot())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.Warnf("config watcher: %v", err)
		}
	}
}
