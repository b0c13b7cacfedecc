package http

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

func newConnection(id string, buffer int) *Connection {
	return &Connection{ID: id, Send: make(chan ports.UpdateEvent, buffer)}
}

func TestConnectionManager(t *testing.T) {
	t.Run("register and unregister connection", func(t *testing.T) {
		cm := NewConnectionManager()
		conn := newConnection("test-conn", 1)

		require.True(t, cm.Register(conn))
		assert.Equal(t, 1, cm.Count())

		cm.Unregister("test-conn")
		assert.Equal(t, 0, cm.Count())

		_, ok := <-conn.Send
		assert.False(t, ok, "send channel should be closed")
	})

	t.Run("unregister unknown is a no-op", func(t *testing.T) {
		cm := NewConnectionManager()
		assert.NotPanics(t, func() { cm.Unregister("ghost") })
	})

	t.Run("double unregister does not close twice", func(t *testing.T) {
		cm := NewConnectionManager()
		require.True(t, cm.Register(newConnection("a", 1)))

		cm.Unregister("a")
		assert.NotPanics(t, func() { cm.Unregister("a") })
	})

	t.Run("broadcast to connections", func(t *testing.T) {
		cm := NewConnectionManager()

		conns := make([]*Connection, 3)
		for i := range conns {
			conns[i] = newConnection(fmt.Sprintf("c%d", i), 1)
			require.True(t, cm.Register(conns[i]))
		}

		event := ports.UpdateEvent{Type: ports.EventTypeReload, Timestamp: time.Now()}
		assert.Equal(t, 3, cm.Broadcast(event))

		for _, c := range conns {
			select {
			case got := <-c.Send:
				assert.Equal(t, ports.EventTypeReload, got.Type)
			default:
				t.Fatalf("connection %s did not receive the event", c.ID)
			}
		}
	})

	t.Run("slow client is dropped", func(t *testing.T) {
		cm := NewConnectionManager()
		slow := newConnection("slow", 1)
		fast := newConnection("fast", 4)
		require.True(t, cm.Register(slow))
		require.True(t, cm.Register(fast))

		event := ports.UpdateEvent{Type: ports.EventTypeReload}
		assert.Equal(t, 2, cm.Broadcast(event))
		assert.Equal(t, 1, cm.Broadcast(event))
		assert.Equal(t, 1, cm.Count())

		<-slow.Send
		_, ok := <-slow.Send
		assert.False(t, ok)
	})

	t.Run("concurrent access", func(t *testing.T) {
		cm := NewConnectionManager()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("conn-%d", i)
				conn := newConnection(id, 8)
				cm.Register(conn)
				cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeReload})
				cm.Unregister(id)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 0, cm.Count())
	})
}

func TestConnectionManagerShutdown(t *testing.T) {
	cm := NewConnectionManager()
	conn := newConnection("a", 1)
	require.True(t, cm.Register(conn))

	cm.CloseAll()

	assert.Equal(t, 0, cm.Count())
	_, ok := <-conn.Send
	assert.False(t, ok)

	assert.False(t, cm.Register(newConnection("late", 1)), "closed manager must refuse connections")

	cm.Reset()
	assert.True(t, cm.Register(newConnection("after-reset", 1)))
}
