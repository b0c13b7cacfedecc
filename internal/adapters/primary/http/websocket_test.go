package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
	"github.com/fredcamaral/slidemark/internal/test/builders"
)

func startPreview(t *testing.T) (*Server, string) {
	t.Helper()
	server := NewServer(getTestServerConfig(), newDeckGenerator(), nil)
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() { _ = server.Stop(context.Background()) })
	return server, "ws://" + server.Addr().String() + "/ws"
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) ports.UpdateEvent {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event ports.UpdateEvent
	require.NoError(t, ws.ReadJSON(&event))
	return event
}

func waitForClients(t *testing.T, server *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return server.connMgr.Count() == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketUpgrade(t *testing.T) {
	server, url := startPreview(t)
	server.SetPresentation(&ports.ParseResult{Presentation: builders.RichPresentation()})

	t.Run("greets with connected event", func(t *testing.T) {
		ws := dial(t, url, nil)

		event := readEvent(t, ws)
		assert.Equal(t, EventTypeConnected, event.Type)

		data, ok := event.Data.(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, data["client"])
		assert.EqualValues(t, 4, data["slides"])
	})

	t.Run("multiple connections", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ws := dial(t, url, nil)
			assert.Equal(t, EventTypeConnected, readEvent(t, ws).Type)
		}
	})
}

func TestWebSocketBroadcast(t *testing.T) {
	server, url := startPreview(t)

	clients := []*websocket.Conn{dial(t, url, nil), dial(t, url, nil)}
	for _, ws := range clients {
		readEvent(t, ws)
	}
	waitForClients(t, server, 2)

	require.NoError(t, server.NotifyClients(ports.UpdateEvent{
		Type:      ports.EventTypeReload,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"file": "deck.md"},
	}))

	for _, ws := range clients {
		event := readEvent(t, ws)
		assert.Equal(t, ports.EventTypeReload, event.Type)
		data := event.Data.(map[string]interface{})
		assert.Equal(t, "deck.md", data["file"])
	}
}

func TestWebSocketClientDisconnect(t *testing.T) {
	server, url := startPreview(t)

	ws := dial(t, url, nil)
	readEvent(t, ws)
	waitForClients(t, server, 1)

	require.NoError(t, ws.Close())
	waitForClients(t, server, 0)
}

func TestWebSocketServerStop(t *testing.T) {
	server := NewServer(getTestServerConfig(), newDeckGenerator(), nil)
	require.NoError(t, server.Start(context.Background()))

	ws := dial(t, "ws://"+server.Addr().String()+"/ws", nil)
	readEvent(t, ws)
	waitForClients(t, server, 1)

	require.NoError(t, server.Stop(context.Background()))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) ||
		strings.Contains(err.Error(), "EOF") || strings.Contains(err.Error(), "reset"),
		"unexpected error: %v", err)
}

func TestWebSocketOrigin(t *testing.T) {
	_, url := startPreview(t)

	t.Run("loopback origin accepted", func(t *testing.T) {
		header := http.Header{"Origin": []string{"http://localhost:5173"}}
		ws := dial(t, url, header)
		assert.Equal(t, EventTypeConnected, readEvent(t, ws).Type)
	})

	t.Run("foreign origin rejected", func(t *testing.T) {
		header := http.Header{"Origin": []string{"https://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestIsValidOrigin(t *testing.T) {
	config := getTestServerConfig()
	config.CORSOrigins = []string{"https://slides.example.com"}
	server := NewServer(config, nil, nil)

	tests := []struct {
		name   string
		origin string
		host   string
		valid  bool
	}{
		{"no origin", "", "localhost:1000", true},
		{"same host", "http://deck.lan:1000", "deck.lan:1000", true},
		{"loopback ip", "http://127.0.0.1:3000", "localhost:1000", true},
		{"ipv6 loopback", "http://[::1]:3000", "localhost:1000", true},
		{"configured origin", "https://slides.example.com", "localhost:1000", true},
		{"unknown origin", "https://evil.example", "localhost:1000", false},
		{"malformed origin", "://bad", "localhost:1000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.valid, server.isValidOrigin(req))
		})
	}
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, isLoopback("localhost"))
	assert.True(t, isLoopback("127.0.0.1"))
	assert.True(t, isLoopback("::1"))
	assert.False(t, isLoopback("example.com"))
	assert.False(t, isLoopback("10.0.0.1"))
}

func TestWebSocketGreetingWithoutPresentation(t *testing.T) {
	_, url := startPreview(t)

	ws := dial(t, url, nil)
	event := readEvent(t, ws)
	data := event.Data.(map[string]interface{})
	assert.EqualValues(t, 0, data["slides"])
}
