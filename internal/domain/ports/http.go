package ports

import (
	"context"
	"time"
)

// HTTPServer defines the interface for the preview server
type HTTPServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// SetPresentation swaps the result served to clients
	SetPresentation(result *ParseResult)
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// UpdateEventType constants
const (
	EventTypeReload = "reload"
	EventTypeError  = "error"
)

// PreviewMetrics counts what the preview server and the reload loop do
type PreviewMetrics interface {
	// RecordRequest counts one HTTP response by status code
	RecordRequest(status int)
	// RecordConnection counts one websocket client
	RecordConnection()
	// RecordReload counts one re-parse of the deck; err is nil on success
	RecordReload(duration time.Duration, err error)
	// HealthStatus reports counters and runtime figures as JSON-ready values
	HealthStatus() map[string]interface{}
}
