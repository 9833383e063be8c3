package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	minTimeBetweenReloadAttempts = 500 * time.Millisecond
	delayBetweenEventAndReload   = 50 * time.Millisecond
)

// Watch calls onReload with the freshly loaded profile whenever the file at
// path is written, until ctx is done. Profiles that fail to load are logged
// and skipped, the previous one stays in effect.
func Watch(ctx context.Context, path string, onReload func(*Profile)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read profile %s: %w", path, err)
	}

	slog.Debug("Watching profile for changes", "path", path)

	var (
		mu          sync.Mutex
		lastAttempt time.Time
		stopped     bool
	)

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if stopped || now.Before(lastAttempt.Add(minTimeBetweenReloadAttempts)) {
			return
		}
		lastAttempt = now

		// editors write in several steps, let them finish
		<-time.After(delayBetweenEventAndReload)

		p, err := Load(path)
		if err != nil {
			slog.Warn("Failed to reload profile", "path", path, "error", err)
			return
		}
		slog.Info("Reloaded profile", "path", path)
		onReload(p)
	})
	v.WatchConfig()

	<-ctx.Done()

	mu.Lock()
	stopped = true
	mu.Unlock()
	slog.Debug("Stopped watching profile", "path", path)
	return nil
}
