package config

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events a single save produces
// (truncate + write, or rename + create) into one reload.
const reloadDelay = 100 * time.Millisecond

// Change is one successful reload. New may be adjusted by the callback
// (e.g. to reapply command-line overrides) before the comparison methods
// are called; it becomes the baseline for the next reload.
type Change struct {
	Old, New *Config
}

// OriginsChanged reports whether the CORS allow-list differs.
func (c Change) OriginsChanged() bool {
	return !slices.Equal(c.Old.Server.CORS.AllowedOrigins, c.New.Server.CORS.AllowedOrigins)
}

// RestartRequired lists the changed keys that only take effect on restart.
func (c Change) RestartRequired() []string {
	o, n := c.Old, c.New
	var keys []string
	add := func(changed bool, key string) {
		if changed {
			keys = append(keys, key)
		}
	}
	add(o.Server.Host != n.Server.Host, "server.host")
	add(o.Server.HTTPPort != n.Server.HTTPPort, "server.http_port")
	add(o.Server.Stream.Interval != n.Server.Stream.Interval, "server.stream.interval")
	add(o.Server.Seed.File != n.Server.Seed.File, "server.seed.file")
	add(o.Server.UIDir != n.Server.UIDir, "server.ui_dir")
	add(o.Log.Format != n.Log.Format, "log.format")
	add(o.Log.File != n.Log.File, "log.file")
	add(o.Log.MaxSizeMB != n.Log.MaxSizeMB ||
		o.Log.MaxBackups != n.Log.MaxBackups ||
		o.Log.MaxAgeDays != n.Log.MaxAgeDays, "log.rotation")
	return keys
}

// Watch reloads path whenever it changes and calls onChange with the config
// in effect before and after. It runs until ctx is cancelled.
//
// A reload that fails to parse or validate is logged and skipped; current
// stays the baseline. onChange runs on the watcher goroutine.
func Watch(ctx context.Context, path string, current *Config, onChange func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("server config: watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("server config: watch %q: %w", path, err)
	}
	slog.Info("config: watching for changes", "path", path)

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so Create counts as a write.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(reloadDelay)
			}

		case <-timer.C:
			next, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config", "path", path, "err", err)
				continue
			}
			ch := Change{Old: current, New: next}
			onChange(ch)
			current = ch.New
			slog.Info("config: reloaded", "path", path, "log_level", current.Log.Level)

			// An atomic save replaces the inode; watch the new file.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
