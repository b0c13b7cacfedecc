package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// NotifyWatcher turns fsnotify events into debounced deck change events.
//
// The parent directory is watched rather than the file itself: editors that
// save by writing a temp file and renaming it replace the inode, and a watch
// on the old inode would go silent.
type NotifyWatcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	targets map[string]struct{}
	dirs    map[string]struct{}
	started bool
	stopped bool

	events chan ports.FileChangeEvent
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewNotifyWatcher creates a watcher backed by the OS notification API
func NewNotifyWatcher(debounce time.Duration, logger *slog.Logger) (*NotifyWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &NotifyWatcher{
		fs:       fs,
		debounce: debounce,
		logger:   logger.With("component", "watcher", "mode", "notify"),
		targets:  make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching path. Every call shares the same event channel; the
// first call's context bounds the dispatch loop.
func (w *NotifyWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil, ErrWatcherStopped
	}

	dir := filepath.Dir(absPath)
	if _, ok := w.dirs[dir]; !ok {
		if err := w.fs.Add(dir); err != nil {
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.targets[absPath] = struct{}{}

	if !w.started {
		w.started = true
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.loop(ctx)
		}()
	}

	w.logger.Debug("Watching file", slog.String("path", absPath))

	return w.events, nil
}

// Stop stops the watcher and closes the event channel. Safe to call twice.
func (w *NotifyWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	err := w.fs.Close()
	close(w.events)

	if err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}
	return nil
}

// loop collects events per target and flushes them once the burst is over
func (w *NotifyWatcher) loop(ctx context.Context) {
	pending := make(map[string]*ports.FileChangeEvent)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			path := filepath.Clean(ev.Name)
			if !w.isTarget(path) {
				continue
			}
			changeType, ok := changeTypeOf(ev.Op)
			if !ok {
				continue
			}

			pending[path] = &ports.FileChangeEvent{
				Path:      path,
				Type:      coalesce(pending[path], changeType),
				Timestamp: time.Now(),
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watch error", slog.String("error", err.Error()))

		case <-timer.C:
			for path, event := range pending {
				select {
				case w.events <- *event:
					w.logger.Debug("File change detected",
						slog.String("path", path),
						slog.String("type", event.Type.String()),
					)
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
				delete(pending, path)
			}
		}
	}
}

func (w *NotifyWatcher) isTarget(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.targets[path]
	return ok
}

// changeTypeOf maps an fsnotify op onto a change type; chmod is ignored
func changeTypeOf(op fsnotify.Op) (ports.ChangeType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return ports.Created, true
	case op.Has(fsnotify.Write):
		return ports.Modified, true
	case op.Has(fsnotify.Remove):
		return ports.Deleted, true
	case op.Has(fsnotify.Rename):
		return ports.Renamed, true
	default:
		return 0, false
	}
}

// Ensure NotifyWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*NotifyWatcher)(nil)
