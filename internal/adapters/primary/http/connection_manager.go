package http

import (
	"sync"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// Connection is the manager's view of one websocket client
type Connection struct {
	ID   string
	Send chan ports.UpdateEvent
}

// ConnectionManager tracks websocket clients and fans events out to them.
// A client whose buffer is full is dropped; its browser reconnects and
// reloads anyway.
type ConnectionManager struct {
	mu          sync.Mutex
	connections map[string]*Connection
	closed      bool
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
	}
}

// Register adds a connection. It returns false once the manager is closed.
func (cm *ConnectionManager) Register(conn *Connection) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.closed {
		return false
	}
	cm.connections[conn.ID] = conn
	return true
}

// Unregister removes a connection and closes its send channel
func (cm *ConnectionManager) Unregister(connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.connections[connID]; ok {
		delete(cm.connections, connID)
		close(conn.Send)
	}
}

// Broadcast sends an event to every connection and returns how many
// received it
func (cm *ConnectionManager) Broadcast(event ports.UpdateEvent) int {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	delivered := 0
	for id, conn := range cm.connections {
		select {
		case conn.Send <- event:
			delivered++
		default:
			// Client too slow, close connection
			close(conn.Send)
			delete(cm.connections, id)
		}
	}
	return delivered
}

// Count returns the number of live connections
func (cm *ConnectionManager) Count() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.connections)
}

// CloseAll closes every connection and refuses new ones
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.closed = true
	for id, conn := range cm.connections {
		close(conn.Send)
		delete(cm.connections, id)
	}
}

// Reset accepts connections again after CloseAll
func (cm *ConnectionManager) Reset() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.closed = false
}
