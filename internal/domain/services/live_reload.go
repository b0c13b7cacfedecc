package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// LiveReloadService re-parses the deck whenever the watcher reports a change
// and pushes the new IR to the preview server
type LiveReloadService struct {
	watcher          ports.FileWatcher
	server           ports.HTTPServer
	presentations    ports.PresentationService
	logger           *slog.Logger
	metrics          ports.PreviewMetrics
	mu               sync.Mutex
	watching         bool
	watchCancel      context.CancelFunc
	done             chan struct{}
	presentationPath string
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(
	watcher ports.FileWatcher,
	server ports.HTTPServer,
	presentations ports.PresentationService,
	logger *slog.Logger,
) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveReloadService{
		watcher:       watcher,
		server:        server,
		presentations: presentations,
		logger:        logger.With("service", "live_reload"),
	}
}

// SetMetrics records the duration and outcome of every reload
func (s *LiveReloadService) SetMetrics(metrics ports.PreviewMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// Start watches filePath until Stop is called or ctx ends
func (s *LiveReloadService) Start(ctx context.Context, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watching {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.watcher.Watch(watchCtx, filePath)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.watching = true
	s.watchCancel = cancel
	s.presentationPath = filePath
	s.done = make(chan struct{})

	go s.handleEvents(watchCtx, events, s.done)

	return nil
}

// Stop stops watching and waits for the event loop to exit
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return nil
	}

	s.watchCancel()
	s.watchCancel = nil
	s.watching = false
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("File changed detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
				slog.Time("timestamp", event.Timestamp),
			)

			// Nothing to parse until the editor writes the deck back
			if !event.Type.Reloads() {
				continue
			}

			s.notify(s.reload(ctx, event))
		}
	}
}

// reload parses the deck again and hands the result to the server. The
// returned event tells clients to refresh or shows them what went wrong.
func (s *LiveReloadService) reload(ctx context.Context, event ports.FileChangeEvent) ports.UpdateEvent {
	s.mu.Lock()
	path := s.presentationPath
	metrics := s.metrics
	s.mu.Unlock()

	start := time.Now()
	result, err := s.presentations.LoadPresentation(ctx, path)
	if metrics != nil {
		metrics.RecordReload(time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("Failed to reload presentation",
			slog.String("error", err.Error()),
			slog.String("path", path),
			slog.String("change_type", event.Type.String()),
		)
		return ports.UpdateEvent{
			Type:      ports.EventTypeError,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			},
		}
	}

	s.server.SetPresentation(result)

	s.logger.Info("Presentation reloaded successfully",
		slog.Int("slides", result.Presentation.SlideCount()),
		slog.Int("violations", len(result.Violations)),
		slog.String("presentation_path", path),
	)

	return ports.UpdateEvent{
		Type:      ports.EventTypeReload,
		Timestamp: event.Timestamp,
		Data: map[string]interface{}{
			"file":   path,
			"type":   event.Type.String(),
			"slides": result.Presentation.SlideCount(),
		},
	}
}

func (s *LiveReloadService) notify(update ports.UpdateEvent) {
	if err := s.server.NotifyClients(update); err != nil {
		s.logger.Warn("Failed to notify WebSocket clients",
			slog.String("error", err.Error()),
			slog.String("event_type", update.Type),
		)
		return
	}

	s.logger.Debug("WebSocket clients notified successfully",
		slog.String("event_type", update.Type),
	)
}
