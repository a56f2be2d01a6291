package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IssueThenVerifyRoundTrips(t *testing.T) {
	t.Parallel()
	s := NewService([]byte("secret"), 24*time.Hour)
	now := time.Now()

	tok, err := s.Issue("player-1", "room-1", "session-1", now)
	require.NoError(t, err)

	claims, err := s.Verify(tok, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.PlayerID)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestService_VerifyRejectsWrongRoom(t *testing.T) {
	t.Parallel()
	s := NewService([]byte("secret"), 24*time.Hour)
	now := time.Now()

	tok, err := s.Issue("player-1", "room-1", "session-1", now)
	require.NoError(t, err)

	_, err = s.Verify(tok, "room-2")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestService_VerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	s := NewService([]byte("secret"), time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)

	tok, err := s.Issue("player-1", "room-1", "session-1", issuedAt)
	require.NoError(t, err)

	_, err = s.Verify(tok, "room-1")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestService_VerifyRejectsTamperedSignature(t *testing.T) {
	t.Parallel()
	s := NewService([]byte("secret"), time.Hour)
	other := NewService([]byte("different-secret"), time.Hour)

	tok, err := other.Issue("player-1", "room-1", "session-1", time.Now())
	require.NoError(t, err)

	_, err = s.Verify(tok, "room-1")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNeedsRefresh_WithinWindowIsTrue(t *testing.T) {
	t.Parallel()
	now := time.Now()
	assert.True(t, NeedsRefresh(now.Add(2*time.Minute), now))
	assert.False(t, NeedsRefresh(now.Add(10*time.Minute), now))
}
