package datasets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads datasets when their load files change on disk. Events
// are debounced per dataset to prevent reload storms while a file is
// being rewritten.
type Watcher struct {
	registry Watched
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	byFile  map[string]*Dataset
	running bool
	stopCh  chan struct{}
}

// Watched is the subset of the Registry the watcher needs.
type Watched interface {
	All() []*Dataset
}

// DefaultDebounceInterval is the delay between the last file event and the
// reload it triggers.
const DefaultDebounceInterval = 100 * time.Millisecond

// NewWatcher creates a watcher over the registry's datasets. Only datasets
// with a load path are watched; sets registered after Watch starts are not
// picked up.
func NewWatcher(registry Watched) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		registry: registry,
		watcher:  fsw,
		logger:   slog.Default().With("component", "datasets.watcher"),
		debounce: DefaultDebounceInterval,
		timers:   make(map[string]*time.Timer),
		byFile:   make(map[string]*Dataset),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching for load file changes. It blocks until the context
// is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	// Watch the parent directories: editors and atomic saves replace the
	// file, which drops a watch placed on the file itself.
	dirs := make(map[string]struct{})
	for _, ds := range w.registry.All() {
		path := ds.LoadPath()
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		w.byFile[abs] = ds
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	w.logger.Info("dataset watcher started",
		"files", len(w.byFile),
		"debounce_ms", w.debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dataset watcher stopped (context cancelled)")
			return nil
		case <-w.stopCh:
			w.logger.Info("dataset watcher stopped")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("dataset watcher error", "error", err)
		}
	}
}

// handleEvent schedules a debounced reload for the dataset behind the
// changed file, if any.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	ds, ok := w.byFile[abs]
	if !ok {
		return
	}

	if timer, ok := w.timers[abs]; ok {
		timer.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		if err := ds.Reload(); err != nil {
			w.logger.Error("dataset reload failed",
				"dataset", ds.Name(), "path", abs, "error", err)
		}
	})
}

// Stop terminates the watch loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	w.watcher.Close()
	for _, timer := range w.timers {
		timer.Stop()
	}
}
