package watcher

import (
	"errors"
	"log/slog"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// ErrWatcherStopped is returned by Watch after Stop
var ErrWatcherStopped = errors.New("watcher stopped")

// New returns a notification based watcher, or a polling one when the
// platform cannot deliver file system events
func New(cfg entities.WatcherConfig, logger *slog.Logger) ports.FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	w, err := NewNotifyWatcher(cfg.GetDebounce(), logger)
	if err == nil {
		return w
	}

	logger.Warn("File notifications unavailable, falling back to polling",
		slog.String("error", err.Error()),
		slog.Duration("interval", cfg.GetInterval()),
	)
	return NewPollingWatcher(cfg.GetInterval(), cfg.GetDebounce(), logger)
}

// coalesce folds the next change of a burst into the pending one
func coalesce(pending *ports.FileChangeEvent, next ports.ChangeType) ports.ChangeType {
	if pending == nil {
		return next
	}
	return pending.Type.Then(next)
}
