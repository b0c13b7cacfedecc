package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// HTTPLogger keeps the "[component] message" printf style of the preview
// logs on top of a slog handler, which owns level filtering
type HTTPLogger struct {
	component string
	logger    *slog.Logger
}

// NewHTTPLogger creates a new HTTP logger instance
func NewHTTPLogger(component string, logger *slog.Logger) *HTTPLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPLogger{
		component: component,
		logger:    logger,
	}
}

// Debug logs debug messages
func (l *HTTPLogger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs informational messages
func (l *HTTPLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs warning messages
func (l *HTTPLogger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs error messages
func (l *HTTPLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args...)
}

func (l *HTTPLogger) log(level slog.Level, msg string, args ...interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf("[%s] "+msg, append([]interface{}{l.component}, args...)...))
}

// Server is the local preview server. It serves the HTML deck, the IR as
// JSON and a websocket that tells browsers to reload.
type Server struct {
	server  *http.Server
	addr    net.Addr
	connMgr *ConnectionManager
	deck    ports.Generator
	config  *entities.ServerConfig
	logger  *HTTPLogger
	metrics ports.PreviewMetrics

	mu      sync.RWMutex
	result  *ports.ParseResult
	running bool
}

// NewServer creates a new preview server. deck renders the page served at
// "/"; config must not be nil.
func NewServer(config *entities.ServerConfig, deck ports.Generator, logger *slog.Logger) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	return &Server{
		connMgr: NewConnectionManager(),
		deck:    deck,
		config:  config,
		logger:  NewHTTPLogger("preview", logger),
	}
}

// SetMetrics makes the server count requests and connections and serve
// them at /api/health. Call before Start.
func (s *Server) SetMetrics(metrics ports.PreviewMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// SetPresentation swaps the result served to clients
func (s *Server) SetPresentation(result *ports.ParseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// GetPresentation returns the current result, nil before the first parse
func (s *Server) GetPresentation() *ports.ParseResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Start binds the configured address and serves in the background. Bind
// errors are returned directly.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Address(), err)
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.addr = listener.Addr()
	s.connMgr.Reset()
	s.running = true

	go func() {
		s.logger.Info("Preview server listening on http://%s", listener.Addr())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop closes websocket clients and shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return errors.New("server not running")
	}
	s.running = false
	server := s.server
	s.mu.Unlock()

	// In-flight handlers take the read lock, so shut down without holding it
	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("Preview server stopped")
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	delivered := s.connMgr.Broadcast(event)
	s.logger.Debug("Broadcast %s event to %d clients", event.Type, delivered)
	return nil
}

func (s *Server) currentMetrics() ports.PreviewMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound address, nil when not started
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the routed handler with CORS and middleware applied.
// Start calls it with the lock held, so it reads fields directly.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebSocket)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/presentation", s.handlePresentationJSON).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id}", s.handleSlide).Methods(http.MethodGet)
	api.HandleFunc("/violations", s.handleViolations).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/", s.handleDeck).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("%s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})

	// Outermost first: recovery -> logging -> rate limiting -> security headers
	router.Use(
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger, s.metrics),
		rateLimitMiddleware(newRateLimiter(100, time.Minute)),
		securityHeadersMiddleware,
	)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return c.Handler(router)
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
