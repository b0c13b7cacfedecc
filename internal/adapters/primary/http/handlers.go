package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// Version is reported by /api/config
var Version = "dev"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SlideResponse wraps one slide with its position in the deck
type SlideResponse struct {
	Index int             `json:"index"`
	Total int             `json:"total"`
	Slide *entities.Slide `json:"slide"`
}

// ViolationsResponse lists the findings of the last parse
type ViolationsResponse struct {
	Count      int                  `json:"count"`
	Violations []entities.Violation `json:"violations"`
}

// ConfigResponse represents the configuration API response
type ConfigResponse struct {
	Version      string `json:"version"`
	DeckFormat   string `json:"deck_format"`
	WebSocketURL string `json:"websocket_url"`
	LiveReload   bool   `json:"live_reload"`
}

// placeholder is served until the first successful parse
func placeholder() *entities.Presentation {
	return &entities.Presentation{
		Metadata: entities.Metadata{Title: "No presentation loaded"},
		Slides: []entities.Slide{
			{
				ID:     "placeholder",
				Layout: entities.LayoutTitle,
				Title:  entities.StringPtr("No presentation loaded"),
				Subtitle: entities.StringPtr(
					"Waiting for the deck to parse. Check the terminal for errors."),
			},
		},
	}
}

// handleDeck renders the current presentation with the deck generator
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	if s.deck == nil {
		s.handleError(w, errors.New("no deck generator configured"), http.StatusInternalServerError)
		return
	}

	presentation := placeholder()
	if result := s.GetPresentation(); result != nil && result.Presentation != nil {
		presentation = result.Presentation
	}

	// Render to a buffer so a generator failure still produces a clean 500
	var buf bytes.Buffer
	err := s.deck.Generate(r.Context(), presentation, &buf, ports.ExportOptions{IncludeNotes: true})
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", s.deck.MimeType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("Failed to write deck response: %v", err)
	}
}

// handlePresentationJSON returns the IR of the current presentation
func (s *Server) handlePresentationJSON(w http.ResponseWriter, r *http.Request) {
	result := s.GetPresentation()
	if result == nil || result.Presentation == nil {
		s.handleError(w, errors.New("no presentation loaded"), http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, result.Presentation)
}

// handleSlide returns a single slide by identifier
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	result := s.GetPresentation()
	if result == nil || result.Presentation == nil {
		s.handleError(w, errors.New("no presentation loaded"), http.StatusServiceUnavailable)
		return
	}

	id := mux.Vars(r)["id"]
	slide, err := result.Presentation.SlideByID(id)
	if err != nil {
		if errors.Is(err, entities.ErrSlideNotFound) {
			s.handleError(w, err, http.StatusNotFound)
			return
		}
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, SlideResponse{
		Index: result.Presentation.SlideIndex(id),
		Total: result.Presentation.SlideCount(),
		Slide: slide,
	})
}

// handleViolations returns the findings collected by the last parse
func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	response := ViolationsResponse{Violations: []entities.Violation{}}
	if result := s.GetPresentation(); result != nil && len(result.Violations) > 0 {
		response.Violations = result.Violations
	}
	response.Count = len(response.Violations)

	s.writeJSON(w, response)
}

// handleConfig returns the server configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	format := ""
	if s.deck != nil {
		format = s.deck.Format()
	}

	s.writeJSON(w, ConfigResponse{
		Version:      Version,
		DeckFormat:   format,
		WebSocketURL: "/ws",
		LiveReload:   true,
	})
}

// handleHealth reports preview counters, or a bare status without metrics
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.currentMetrics()
	if metrics == nil {
		s.writeJSON(w, map[string]interface{}{"healthy": true})
		return
	}
	s.writeJSON(w, metrics.HealthStatus())
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	// Sanitize error message to prevent information disclosure
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusServiceUnavailable:
		message = "Presentation not available yet"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("HTTP error (status %d): %v", status, err)
	} else {
		s.logger.Debug("HTTP error (status %d): %v", status, err)
	}

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response: %v", encodeErr)
	}
}

// writeJSON encodes data before writing so encoding failures become a 500
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Error("Failed to write JSON response: %v", err)
	}
}
