package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

func testState() *engine.GameState {
	return &engine.GameState{
		Puzzle: engine.MustParseLayout(
			"#####",
			"#P.T#",
			"#####",
		),
		Message: "hello",
		Steps:   3,
	}
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(hub, "s")
	c2 := newTestClient(hub, "s")

	hub.registerClient(c1)
	hub.registerClient(c2)
	assert.Equal(t, 2, hub.ClientCount("s"))

	hub.unregisterClient(c1)
	assert.Equal(t, 1, hub.ClientCount("s"))
	_, open := <-c1.send
	assert.False(t, open, "send channel is closed on unregister")

	// Unregistering twice is harmless
	hub.unregisterClient(c1)
	hub.unregisterClient(c2)
	assert.Zero(t, hub.ClientCount("s"))
	assert.NotContains(t, hub.sessions, "s")
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "s1")
	other := newTestClient(hub, "s2")
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.BroadcastToSession("s1", testState())

	select {
	case data := <-watcher.send:
		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		assert.Equal(t, "s1", message.SessionID)
		assert.Equal(t, EventStateUpdate, message.Event)
		require.NotNil(t, message.GameState)
		assert.Equal(t, 3, message.GameState.Steps)
		assert.Equal(t, engine.Position{Row: 1, Col: 1}, message.GameState.Puzzle.Player)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received")
	}

	assert.Empty(t, other.send, "other sessions are not notified")
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "ev")
	hub.registerClient(client)

	hub.BroadcastEvent("ev", "solved", map[string]int{"steps": 4})

	var message map[string]any
	require.NoError(t, json.Unmarshal(<-client.send, &message))
	assert.Equal(t, "solved", message["event"])
	assert.Equal(t, map[string]any{"steps": float64(4)}, message["data"])
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.BroadcastToSession("slow", testState())
	assert.Zero(t, hub.ClientCount("slow"))
}

func startHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	return message
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub()
	server := startHub(t, hub)

	conn := dial(t, server, "ws-test")
	require.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToSession("ws-test", testState())
	message := readMessage(t, conn)
	assert.Equal(t, "ws-test", message.SessionID)
	assert.Equal(t, "hello", message.GameState.Message)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 0 }, time.Second, 5*time.Millisecond)
}

func TestWebSocketCommands(t *testing.T) {
	hub := NewHub()
	received := make(chan Command, 1)
	hub.SetCommandHandler(func(ctx context.Context, sessionID string, cmd Command) error {
		if cmd.Action != "move" {
			return errors.New("unsupported action")
		}
		received <- cmd
		hub.BroadcastToSession(sessionID, testState())
		return nil
	})
	server := startHub(t, hub)

	conn := dial(t, server, "cmd")
	require.Eventually(t, func() bool { return hub.ClientCount("cmd") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Command{Action: "move", Direction: "up"}))
	select {
	case cmd := <-received:
		assert.Equal(t, "up", cmd.Direction)
	case <-time.After(time.Second):
		t.Fatal("command not delivered")
	}
	assert.Equal(t, EventStateUpdate, readMessage(t, conn).Event)

	require.NoError(t, conn.WriteJSON(Command{Action: "fly"}))
	message := readMessage(t, conn)
	assert.Equal(t, EventError, message.Event)
	assert.Equal(t, "unsupported action", message.Data)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Equal(t, EventError, readMessage(t, conn).Event)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "bye")
	}))
	defer server.Close()

	conn := dial(t, server, "bye")
	require.Eventually(t, func() bool { return hub.ClientCount("bye") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.ClientCount("bye"))
}
