package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the catalog whenever the templates directory or dataset file
// changes. Bursts of events are coalesced; after each reload a value is sent
// on the returned channel if nobody is waiting for the previous one. The
// channel is closed once ctx is cancelled and the watcher has shut down.
func (c *Catalog) Watch(ctx context.Context) (<-chan struct{}, error) {
	if c.templatesDir == "" && c.datasetFile == "" {
		return nil, fmt.Errorf("nothing to watch: no templates directory or dataset file configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if c.templatesDir != "" {
		if err := os.MkdirAll(c.templatesDir, 0755); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to create templates directory: %w", err)
		}
		if err := watcher.Add(c.templatesDir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", c.templatesDir, err)
		}
	}
	if c.datasetFile != "" {
		// Editors replace files on save, so watch the parent directory
		if err := watcher.Add(filepath.Dir(c.datasetFile)); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", c.datasetFile, err)
		}
	}

	reloaded := make(chan struct{}, 1)
	go c.watchLoop(ctx, watcher, reloaded)

	c.logger.Info("Watching templates",
		zap.String("dir", c.templatesDir),
		zap.String("dataset", c.datasetFile))
	return reloaded, nil
}

func (c *Catalog) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, reloaded chan<- struct{}) {
	defer close(reloaded)
	defer watcher.Close()

	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !c.relevant(event) {
				continue
			}
			c.logger.Debug("Template change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(c.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error("Watcher error", zap.Error(err))

		case <-timer.C:
			if err := c.Reload(); err != nil {
				c.logger.Error("Reload failed, keeping current templates", zap.Error(err))
				continue
			}
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}
	}
}

// relevant reports whether a file event touches a template source
func (c *Catalog) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if c.datasetFile != "" && filepath.Clean(event.Name) == filepath.Clean(c.datasetFile) {
		return true
	}
	return c.templatesDir != "" &&
		filepath.Dir(event.Name) == filepath.Clean(c.templatesDir) &&
		strings.HasSuffix(event.Name, ".md")
}
