package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	a, err := hub.Register(10, nil)
	require.NoError(t, err)
	b, err := hub.Register(10, nil)
	require.NoError(t, err)
	other, err := hub.Register(11, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.ConnectionCount(10))

	hub.Broadcast(10, "hello")
	assert.Equal(t, "hello", string(<-a.Send))
	assert.Equal(t, "hello", string(<-b.Send))
	assert.Empty(t, other.Send)

	hub.Unregister(a)
	hub.Unregister(a)
	assert.Equal(t, 1, hub.ConnectionCount(10))
	_, open := <-a.Send
	assert.False(t, open)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, err = hub.Register(10, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_PerUserLimit(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)
	_ = hub.Shutdown(context.Background())
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		hub.Broadcast(3, "x")
	}
	assert.Len(t, c.Send, sendBuffer)
	_ = hub.Shutdown(context.Background())
}

func TestHub_StartWiringForwardsRedisMessages(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	client, err := hub.Register(42, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(ctx, 42, `{"type":"notification_created"}`))
	assert.Eventually(t, func() bool { return len(client.Send) == 1 }, testEventuallyTimeout, testPollInterval)
	assert.JSONEq(t, `{"type":"notification_created"}`, string(<-client.Send))
	_ = hub.Shutdown(context.Background())
}

func TestNotifier_WithoutRedisDeliversLocally(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	n := NewNotifier(nil).WithLocalHub(hub)
	client, err := hub.Register(7, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(context.Background(), 7, "payload"))
	assert.Equal(t, "payload", string(<-client.Send))
	require.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
	_ = hub.Shutdown(context.Background())
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, ok := ParseUserChannel(tt.expected)
		assert.True(t, ok)
		assert.Equal(t, tt.userID, id)
	}

	_, ok := ParseUserChannel("notifications:user:abc")
	assert.False(t, ok)
	_, ok = ParseUserChannel("chat:conv:1")
	assert.False(t, ok)
}
