package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestStreamBlockTimeoutIsSeconds(t *testing.T) {
	// A bare integer would be nanoseconds and busy-poll the stream.
	assert.Equal(t, 5*time.Second, streamBlockTimeout)
	assert.GreaterOrEqual(t, int64(streamBlockTimeout), int64(time.Second))
}

func TestHubBroadcastReachesRegisteredClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Broadcast([]byte(`{"moment_id":"m-1"}`))

	select {
	case msg := <-client.send:
		assert.Equal(t, `{"moment_id":"m-1"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("broadcast did not reach client")
	}

	hub.unregister <- client
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	// Channel is closed on unregister.
	_, open := <-client.send
	assert.False(t, open)
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{hub: hub, send: make(chan []byte)} // unbuffered, never read
	hub.register <- slow
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Broadcast([]byte("update"))

	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	require.Equal(t, 0, hub.ClientCount())
}
