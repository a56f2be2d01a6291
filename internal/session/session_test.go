package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_RegisterFirstLoginHasNoEviction(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	now := time.Now()

	sess, evicted, err := s.Register(context.Background(), "p1", "r1", "socket-1", now)
	require.NoError(t, err)
	assert.Empty(t, evicted)
	assert.Equal(t, "socket-1", sess.SocketID)
}

func TestMemStore_RegisterSecondLoginEvictsFirst(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	now := time.Now()

	first, _, err := s.Register(ctx, "p1", "r1", "socket-1", now)
	require.NoError(t, err)

	second, evicted, err := s.Register(ctx, "p1", "r1", "socket-2", now)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, evicted)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestMemStore_UpdateSocketRebindsWithoutNewSession(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	now := time.Now()

	original, _, err := s.Register(ctx, "p1", "r1", "socket-1", now)
	require.NoError(t, err)

	require.NoError(t, s.UpdateSocket(ctx, "p1", "r1", "socket-2", now))

	current, err := s.Get(ctx, "p1", "r1")
	require.NoError(t, err)
	assert.Equal(t, original.SessionID, current.SessionID)
	assert.Equal(t, "socket-2", current.SocketID)
}

func TestMemStore_EvictRemovesSession(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	_, _, err := s.Register(ctx, "p1", "r1", "socket-1", time.Now())
	require.NoError(t, err)

	require.NoError(t, s.Evict(ctx, "p1", "r1"))

	_, err = s.Get(ctx, "p1", "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsStale_PastThresholdIsTrue(t *testing.T) {
	t.Parallel()
	now := time.Now()
	sess := Session{LastSeenAt: now.Add(-30 * time.Second)}

	assert.True(t, IsStale(sess, now, 15*time.Second))
	assert.False(t, IsStale(sess, now, time.Minute))
}

func TestMemStore_TouchUpdatesLastSeenWithoutChangingSocket(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	start := time.Now()
	_, _, err := s.Register(ctx, "p1", "r1", "socket-1", start)
	require.NoError(t, err)

	later := start.Add(10 * time.Second)
	require.NoError(t, s.Touch(ctx, "p1", "r1", later))

	current, err := s.Get(ctx, "p1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "socket-1", current.SocketID)
	assert.Equal(t, later, current.LastSeenAt)
}
