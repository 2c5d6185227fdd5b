package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long Watch waits after the last change before
// calling back.
const DefaultDebounce = 500 * time.Millisecond

// Watch calls onChange once per burst of changes under roots until ctx is
// done. Directories created while watching are watched too. onChange runs on
// the watching goroutine.
func Watch(ctx context.Context, roots []string, debounce time.Duration, log *zap.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			log.Info("directory not found, not watching", zap.String("dir", root))
			continue
		}
		log.Debug("setting up watch", zap.String("dir", root))
		addTree(watcher, root, log)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				addTree(watcher, event.Name, log)
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string, log *zap.Logger) {
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("error walking directory", zap.String("path", p), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(p); err != nil {
				log.Warn("failed to watch directory", zap.String("path", p), zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("error during directory walk for watching", zap.String("dir", root), zap.Error(err))
	}
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.IsDir()
}
