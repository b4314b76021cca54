package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(h *Hub, userID int64) *Client {
	return &Client{hub: h, userID: userID, send: make(chan []byte, sendBufferSize)}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var e Event
		require.NoError(t, json.Unmarshal(raw, &e))
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHubReadyAndBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.OnReady(func(userID int64) (any, error) {
		return map[string]int{"producers": 3}, nil
	})
	go hub.Run()
	defer hub.Shutdown()

	alice := newTestClient(hub, 1)
	bob := newTestClient(hub, 2)
	hub.register <- alice
	ready := receive(t, alice)
	assert.Equal(t, OpReady, ready.Op)
	data := ready.Data.(map[string]any)
	assert.EqualValues(t, 1, data["user_id"])
	assert.EqualValues(t, 3, data["pending_counts"].(map[string]any)["producers"])

	hub.register <- bob
	receive(t, bob)
	assert.Equal(t, []int64{1, 2}, hub.OnlineUserIDs())

	hub.BroadcastToUser(2, Event{Op: OpSettingsUpdated})
	got := receive(t, bob)
	assert.Equal(t, OpSettingsUpdated, got.Op)
	assert.Empty(t, alice.send)

	hub.BroadcastToAll(Event{Op: OpOrderStatusUpdated, Data: EntityData{ID: 7, Status: "shipped"}})
	a, b := receive(t, alice), receive(t, bob)
	assert.Equal(t, a.Seq, b.Seq)
	assert.Greater(t, a.Seq, got.Seq)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Shutdown()

	c := newTestClient(hub, 9)
	hub.register <- c
	receive(t, c)

	hub.unregister <- c
	require.Eventually(t, func() bool { return len(hub.OnlineUserIDs()) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)
}

func TestShutdownTwice(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	hub.Shutdown()
	hub.Shutdown()
}
