package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(1, nil)
	assert.NoError(t, err)
	assert.True(t, hub.IsOnline(1))
	assert.False(t, hub.IsOnline(2))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(1))

	// Unregistering twice is harmless.
	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.totalConns)
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(1, nil)
	assert.Error(t, err)

	// Other users are unaffected.
	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, `{"type":"badge_received"}`)

	assert.Equal(t, `{"type":"badge_received"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"badge_received"}`, string(<-b.Send))
	assert.Empty(t, other.Send)
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll("maintenance")

	assert.Equal(t, "maintenance", string(<-a.Send))
	assert.Equal(t, "maintenance", string(<-b.Send))
}

func TestClient_TrySendDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte(fmt.Sprintf("msg %d", i))
	}

	// Buffer is full; the message is dropped instead of blocking.
	client.TrySend([]byte("overflow"))
	assert.Len(t, client.Send, cap(client.Send))
	assert.Equal(t, "msg 0", string(<-client.Send))
}

func TestHub_StartWiringRoutesUserChannels(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	target, err := hub.Register(7, nil)
	require.NoError(t, err)
	bystander, err := hub.Register(8, nil)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	assert.Eventually(t, func() bool {
		require.NoError(t, n.PublishUser(context.Background(), 7, map[string]string{"type": "badge_received"}))
		return len(target.Send) > 0
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, bystander.Send)

	assert.Eventually(t, func() bool {
		require.NoError(t, n.PublishBroadcast(context.Background(), "maintenance"))
		return len(bystander.Send) > 0
	}, time.Second, 10*time.Millisecond)
}
