package routing

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cache entries when component source files change.
//
// The resolve function maps a changed file path to a component id; it
// returns "" for files that do not back any route.
type Watcher struct {
	fs      *fsnotify.Watcher
	cache   *Cache
	resolve func(path string) string
	logger  *slog.Logger
}

// NewWatcher creates a cache-invalidation watcher.
func NewWatcher(cache *Cache, resolve func(path string) string, logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{fs: fs, cache: cache, resolve: resolve, logger: logger}, nil
}

// Add registers a directory to watch.
func (w *Watcher) Add(dir string) error {
	return w.fs.Add(dir)
}

// Run processes change events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			component := w.resolve(event.Name)
			if component == "" {
				continue
			}
			w.cache.InvalidateComponent(component)
			w.logger.Debug("route cache invalidated", "component", component, "file", event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
