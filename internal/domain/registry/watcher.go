package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces editor save bursts into one reload
const DefaultDebounce = 300 * time.Millisecond

// Watcher reloads manifests when files under the apps directory change
type Watcher struct {
	seeder   *Seeder
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	closed  bool
	// flushing is held for the whole of a batch so stop can wait for it
	flushing sync.Mutex

	// applied is signalled after each debounced batch, for tests
	applied chan struct{}
}

// NewWatcher creates a watcher over the seeder's apps directory
func NewWatcher(seeder *Seeder, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		seeder:   seeder,
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
		pending:  make(map[string]struct{}),
		applied:  make(chan struct{}, 16),
	}

	if err := w.addTree(seeder.Dir()); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes file events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	w.logger.Info("Manifest watcher started", zap.String("dir", w.seeder.Dir()))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Manifest watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !w.seeder.Matches(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush applies every path touched since the last batch. A path that still
// exists is reloaded; a path that is gone is unregistered. Nothing is
// applied once the watcher has stopped.
func (w *Watcher) flush() {
	w.flushing.Lock()
	defer w.flushing.Unlock()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	paths := w.pending
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	for path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			w.seeder.Forget(path)
			continue
		}
		if _, err := w.seeder.Apply(path); err != nil {
			w.logger.Warn("Failed to reload app manifest", zap.String("path", path), zap.Error(err))
		}
	}

	select {
	case w.applied <- struct{}{}:
	default:
	}
}

func (w *Watcher) addTree(root string) error {
	var mu sync.Mutex
	var dirs []string

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			mu.Lock()
			dirs = append(dirs, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}

	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return nil
}

// stop discards pending paths and waits for a batch already running, so no
// reload happens after Run returns.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.closed = true
	w.pending = make(map[string]struct{})
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	w.flushing.Lock()
	w.flushing.Unlock()

	w.watcher.Close()
	w.logger.Info("Manifest watcher stopped")
}
