package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/grid-tactics/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func testState() *engine.MatchState {
	return &engine.MatchState{
		Scenario: "Test",
		Width:    3,
		Height:   3,
		Phase:    engine.PlayerTurn,
		Turn:     2,
		Units: []engine.Unit{
			{ID: 1, Faction: engine.Player, Position: engine.Cell{X: 1, Y: 0}},
			{ID: 2, Faction: engine.Enemy, Position: engine.Cell{X: 2, Y: 1}, HasActed: true},
		},
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	assert.True(t, hub.sessions["test-session"][client])
	assert.Equal(t, 1, hub.ClientCount("test-session"))
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	_, exists := hub.sessions["test-session"]
	assert.False(t, exists, "empty session should be cleaned up")

	_, open := <-client.send
	assert.False(t, open, "send channel should be closed")

	// second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "multi")
	client2 := newTestClient(hub, "multi")

	hub.registerClient(client1)
	hub.registerClient(client2)
	assert.Equal(t, 2, hub.ClientCount("multi"))

	hub.unregisterClient(client1)
	assert.Equal(t, 1, hub.ClientCount("multi"))
	assert.True(t, hub.sessions["multi"][client2])
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		return message
	case <-time.After(time.Second):
		t.Fatal("no message received within timeout")
	}
	return Message{}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	watcher := newTestClient(hub, "b1")
	other := newTestClient(hub, "b2")
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.BroadcastToSession("b1", testState())

	message := receive(t, watcher)
	assert.Equal(t, "b1", message.SessionID)
	assert.Equal(t, EventStateUpdate, message.Event)
	require.NotNil(t, message.State)
	assert.Equal(t, 2, message.State.Turn)
	assert.Equal(t, engine.Cell{X: 1, Y: 0}, message.State.Units[0].Position)

	assert.Empty(t, other.send, "other sessions must not receive the update")
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub, "event-test")
	hub.registerClient(client)

	hub.BroadcastEvent("event-test", "phase_change", "enemy_turn")

	message := receive(t, client)
	assert.Equal(t, "phase_change", message.Event)
	assert.Equal(t, "enemy_turn", message.Data)
}

func TestHubSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "x"})
	assert.Equal(t, 0, hub.ClientCount("slow"))
}

func TestHubBroadcastDoesNotBlockWithoutRun(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.BroadcastEvent("idle", "tick", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked")
	}
}

func TestHubStop(t *testing.T) {
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	client := newTestClient(hub, "s")
	hub.registerClient(client)

	hub.Stop()
	hub.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Equal(t, 0, hub.ClientCount("s"))
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 1 },
		time.Second, 10*time.Millisecond)

	hub.BroadcastToSession("ws-test", testState())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	assert.Equal(t, "ws-test", message.SessionID)
	assert.Equal(t, engine.Enemy, message.State.Units[1].Faction)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 0 },
		time.Second, 10*time.Millisecond)
}
