package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// PollingWatcher detects changes by polling file metadata and hashing the
// content only when size or mtime moved. Used where the platform offers no
// change notifications.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.RWMutex
	fileInfos map[string]fileState
	stopped   bool

	events chan ports.FileChangeEvent
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// fileState is the last observed state of a watched deck
type fileState struct {
	Size     int64
	ModTime  time.Time
	Checksum string
	Exists   bool
}

// NewPollingWatcher creates a new polling-based file watcher
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &PollingWatcher{
		interval:  interval,
		debounce:  debounce,
		logger:    logger.With("component", "watcher", "mode", "polling"),
		fileInfos: make(map[string]fileState),
		events:    make(chan ports.FileChangeEvent, 10),
		stopCh:    make(chan struct{}),
	}
}

// Watch starts polling path. Every call shares the same event channel.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	state, err := w.scan(absPath)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}
	if !state.Exists {
		return nil, fmt.Errorf("initial scan: %s does not exist", absPath)
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil, ErrWatcherStopped
	}
	w.fileInfos[absPath] = state
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	w.logger.Debug("Watching file", slog.String("path", absPath), slog.Duration("interval", w.interval))

	return w.events, nil
}

// Stop stops polling and closes the event channel. Safe to call twice.
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	// Loops take the read lock, so wait outside of it
	w.wg.Wait()
	close(w.events)

	return nil
}

// pollLoop emits one event per burst of changes once the file has been
// quiet for the debounce period
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		pending    *ports.FileChangeEvent
		lastChange time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			changeType, changed, err := w.checkForChanges(path)
			if err != nil {
				w.logger.Warn("Watch error", slog.String("path", path), slog.String("error", err.Error()))
				continue
			}

			if changed {
				event := ports.FileChangeEvent{
					Path:      path,
					Type:      coalesce(pending, changeType),
					Timestamp: time.Now(),
				}
				pending = &event
				lastChange = event.Timestamp
				continue
			}

			if pending == nil || time.Since(lastChange) < w.debounce {
				continue
			}

			select {
			case w.events <- *pending:
				w.logger.Debug("File change detected",
					slog.String("path", path),
					slog.String("type", pending.Type.String()),
				)
				pending = nil
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// checkForChanges compares the file against its last observed state
func (w *PollingWatcher) checkForChanges(path string) (ports.ChangeType, bool, error) {
	w.mu.RLock()
	old := w.fileInfos[path]
	w.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, false, fmt.Errorf("stat file: %w", err)
		}
		if !old.Exists {
			return 0, false, nil
		}
		w.store(path, fileState{})
		return ports.Deleted, true, nil
	}

	// Skip hashing when size and mtime are unchanged
	if old.Exists && old.Size == info.Size() && old.ModTime.Equal(info.ModTime()) {
		return 0, false, nil
	}

	checksum, err := w.calculateChecksum(path)
	if err != nil {
		return 0, false, fmt.Errorf("calculate checksum: %w", err)
	}

	current := fileState{
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Checksum: checksum,
		Exists:   true,
	}
	w.store(path, current)

	switch {
	case !old.Exists:
		return ports.Created, true, nil
	case old.Checksum != checksum:
		return ports.Modified, true, nil
	default:
		// Touched without a content change
		return 0, false, nil
	}
}

func (w *PollingWatcher) store(path string, state fileState) {
	w.mu.Lock()
	w.fileInfos[path] = state
	w.mu.Unlock()
}

// scan reads the current state of path; a missing file is not an error
func (w *PollingWatcher) scan(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileState{}, nil
		}
		return fileState{}, fmt.Errorf("stat file: %w", err)
	}

	checksum, err := w.calculateChecksum(path)
	if err != nil {
		return fileState{}, fmt.Errorf("calculate checksum: %w", err)
	}

	return fileState{
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Checksum: checksum,
		Exists:   true,
	}, nil
}

// calculateChecksum calculates SHA256 checksum of a file
func (w *PollingWatcher) calculateChecksum(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is validated by caller
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Ensure PollingWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*PollingWatcher)(nil)
