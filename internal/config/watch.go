package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mattjoyce/breakdown/internal/log"
)

// WatchDebounce is the quiet period before a burst of changes triggers a reload.
var WatchDebounce = 250 * time.Millisecond

// Watch calls onChange after files in configDir (or configDir/profiles)
// change. It blocks until ctx is done.
func Watch(ctx context.Context, configDir string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(configDir); err != nil {
		return fmt.Errorf("watch %s: %w", configDir, err)
	}
	if profilesDir := filepath.Join(configDir, "profiles"); dirExists(profilesDir) {
		if err := watcher.Add(profilesDir); err != nil {
			return fmt.Errorf("watch %s: %w", profilesDir, err)
		}
	}

	logger := log.WithComponent("config-watch")
	logger.Info("watching configuration", "dir", configDir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("config change", "path", event.Name, "op", event.Op.String())
			pending = time.After(WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-pending:
			pending = nil
			onChange()
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return name == ChecksumFile || strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
