package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_BeginFirstCallStarts(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	now := time.Now()

	rec, started, err := s.Begin(context.Background(), "p1", "r1", "a1", now)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, StateProcessing, rec.State)
}

func TestMemStore_BeginWhileProcessingDoesNotRestart(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	now := time.Now()

	_, started1, err := s.Begin(ctx, "p1", "r1", "a1", now)
	require.NoError(t, err)
	require.True(t, started1)

	rec, started2, err := s.Begin(ctx, "p1", "r1", "a1", now)
	require.NoError(t, err)
	assert.False(t, started2)
	assert.Equal(t, StateProcessing, rec.State)
}

func TestMemStore_CompletedRecordReplaysResponse(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	now := time.Now()

	_, _, err := s.Begin(ctx, "p1", "r1", "a1", now)
	require.NoError(t, err)
	require.NoError(t, s.Complete(ctx, "p1", "r1", "a1", []byte(`{"ok":true}`), now))

	rec, started, err := s.Begin(ctx, "p1", "r1", "a1", now)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, StateCompleted, rec.State)
	assert.Equal(t, []byte(`{"ok":true}`), rec.Response)
}

func TestMemStore_FailedRecordBlocksUntilRetryTTLElapses(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	now := time.Now()

	_, _, err := s.Begin(ctx, "p1", "r1", "a1", now)
	require.NoError(t, err)
	require.NoError(t, s.Fail(ctx, "p1", "r1", "a1", "policy violation", now))

	rec, started, err := s.Begin(ctx, "p1", "r1", "a1", now)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, StateFailed, rec.State)

	afterRetryWindow := now.Add(FailedRetryTTL + time.Second)
	_, started2, err := s.Begin(ctx, "p1", "r1", "a1", afterRetryWindow)
	require.NoError(t, err)
	assert.True(t, started2)
}

func TestMemStore_DistinctActionsAreIndependent(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()
	now := time.Now()

	_, started1, err := s.Begin(ctx, "p1", "r1", "a1", now)
	require.NoError(t, err)
	_, started2, err := s.Begin(ctx, "p1", "r1", "a2", now)
	require.NoError(t, err)
	assert.True(t, started1)
	assert.True(t, started2)
}
