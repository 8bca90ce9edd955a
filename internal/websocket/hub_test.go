package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// A client that never starts its WritePump drains nothing; once its send
// buffer fills, the hub must evict it inline instead of handing it to the
// unregister channel the hub loop itself services.
func TestSlowClientDoesNotStallHub(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := NewClient(hub, nil, 1, 10)
	hub.Attach(slow)

	// Well past the slow client's send buffer capacity.
	for i := 0; i < 70; i++ {
		hub.ForceLogout(1, "", "sweep")
	}

	attached := make(chan struct{})
	go func() {
		hub.Attach(NewClient(hub, nil, 2, 20))
		close(attached)
	}()

	select {
	case <-attached:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting clients after a slow consumer")
	}

	assert.Eventually(t, func() bool {
		return hub.ConnectedClients(1) == 0
	}, 2*time.Second, 10*time.Millisecond, "slow client was not evicted")
	assert.Eventually(t, func() bool {
		return hub.ConnectedClients(2) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestForceLogoutReachesHealthyClient(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient(hub, nil, 7, 70)
	hub.Attach(client)

	assert.Eventually(t, func() bool {
		return hub.ConnectedClients(7) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.ForceLogout(7, "70", "Session revoked from another device")

	// Welcome message first, then the session event.
	assert.Eventually(t, func() bool {
		return len(client.send) == 2
	}, 2*time.Second, 10*time.Millisecond, "session event was not queued")
}
