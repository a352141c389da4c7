package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"screen-capture-fx/src/watermark"
)

// reloadDelay coalesces the burst of events editors emit when saving.
const reloadDelay = 150 * time.Millisecond

// Watch calls onChange with the re-read watermark settings each time the file
// at path is written or replaced. Invalid files are logged and ignored so the
// previous settings stay in effect. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(watermark.Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: saving via rename replaces the file's inode.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(reloadDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config watch error: %v", err)
		case <-timer.C:
			cfg, err := LoadWatermark(abs)
			if err != nil {
				log.Printf("Watermark config not reloaded: %v", err)
				continue
			}
			log.Printf("Watermark config reloaded from %s", abs)
			onChange(cfg)
		}
	}
}
